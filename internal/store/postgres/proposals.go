package postgres

import (
	"context"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
)

const proposalColumns = `id, asset_id, proposed_schema, change_type, breaking_changes, status, proposed_by, proposed_at, resolved_at, expires_at, auto_expire`

func (db *DB) CreateProposal(ctx context.Context, p *domain.Proposal) error {
	const q = `INSERT INTO proposals (` + proposalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := db.conn.ExecContext(ctx, q, p.ID, p.AssetID, p.ProposedSchema, p.ChangeType, p.BreakingChanges, p.Status, p.ProposedBy, p.ProposedAt, p.ResolvedAt, p.ExpiresAt, p.AutoExpire)
	return mapErr(err)
}

func (db *DB) GetProposal(ctx context.Context, id string) (*domain.Proposal, error) {
	q := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	var p domain.Proposal
	if err := db.conn.GetContext(ctx, &p, q, id); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (db *DB) ListProposalsByAsset(ctx context.Context, assetID string) ([]domain.Proposal, error) {
	q := `SELECT ` + proposalColumns + ` FROM proposals WHERE asset_id = $1 ORDER BY proposed_at DESC`
	var ps []domain.Proposal
	if err := db.conn.SelectContext(ctx, &ps, q, assetID); err != nil {
		return nil, mapErr(err)
	}
	return ps, nil
}

// ListPendingExpirable returns pending proposals that meet either of
// spec.md §4.4's two independent expiration triggers: (a) an explicit
// expires_at that has passed, regardless of auto_expire, or (b)
// auto_expire=true with every acknowledgment's migration_deadline past
// (i.e. the latest non-null deadline recorded has passed), for the
// background expiration sweep (SPEC_FULL.md's supplemented worker).
func (db *DB) ListPendingExpirable(ctx context.Context, asOf time.Time) ([]domain.Proposal, error) {
	q := `SELECT ` + proposalColumns + ` FROM proposals
		WHERE status = 'pending' AND (
			(expires_at IS NOT NULL AND expires_at <= $1)
			OR (
				auto_expire = true
				AND id IN (
					SELECT proposal_id FROM acknowledgments
					WHERE migration_deadline IS NOT NULL
					GROUP BY proposal_id
					HAVING MAX(migration_deadline) <= $1
				)
			)
		)`
	var ps []domain.Proposal
	if err := db.conn.SelectContext(ctx, &ps, q, asOf); err != nil {
		return nil, mapErr(err)
	}
	return ps, nil
}

func (db *DB) UpdateProposalStatus(ctx context.Context, id string, status domain.ProposalStatus, resolvedAt time.Time) error {
	const q = `UPDATE proposals SET status = $2, resolved_at = $3 WHERE id = $1 AND status = 'pending'`
	res, err := db.conn.ExecContext(ctx, q, id, status, resolvedAt)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

const acknowledgmentColumns = `id, proposal_id, consumer_team_id, response, migration_deadline, notes, responded_at`

// UpsertAcknowledgment inserts an Acknowledgment, or replaces a consumer
// team's prior response to the same proposal (the unique constraint on
// (proposal_id, consumer_team_id) means a team may change its mind before
// the proposal resolves).
func (db *DB) UpsertAcknowledgment(ctx context.Context, a *domain.Acknowledgment) error {
	const q = `INSERT INTO acknowledgments (` + acknowledgmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (proposal_id, consumer_team_id) DO UPDATE SET
			response = EXCLUDED.response,
			migration_deadline = EXCLUDED.migration_deadline,
			notes = EXCLUDED.notes,
			responded_at = EXCLUDED.responded_at`
	_, err := db.conn.ExecContext(ctx, q, a.ID, a.ProposalID, a.ConsumerTeamID, a.Response, a.MigrationDeadline, a.Notes, a.RespondedAt)
	return mapErr(err)
}

func (db *DB) ListAcknowledgments(ctx context.Context, proposalID string) ([]domain.Acknowledgment, error) {
	q := `SELECT ` + acknowledgmentColumns + ` FROM acknowledgments WHERE proposal_id = $1`
	var acks []domain.Acknowledgment
	if err := db.conn.SelectContext(ctx, &acks, q, proposalID); err != nil {
		return nil, mapErr(err)
	}
	return acks, nil
}
