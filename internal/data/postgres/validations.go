package postgres

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/fatih/structs"
	"github.com/moleswap/moleswap-svc/internal/data"
	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Expected schema: escrow_validations(id bigserial primary key, order_hash,
// chain_id, escrow_address, validation_type, is_valid, details, validated_at).
const validationsTable = "escrow_validations"

type validations struct {
	db *pgdb.DB
}

func NewEscrowValidations(db *pgdb.DB) data.EscrowValidations {
	return validations{db: db}
}

func (q validations) Insert(record data.EscrowValidation) error {
	if record.ValidatedAt.IsZero() {
		record.ValidatedAt = time.Now().UTC()
	}
	stmt := squirrel.Insert(validationsTable).SetMap(structs.Map(record))
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to insert escrow validation")
}

func (q validations) LatestValid(orderHash string, chainID int64, notBefore time.Time) (*data.EscrowValidation, error) {
	var result data.EscrowValidation
	stmt := squirrel.Select("*").From(validationsTable).
		Where(squirrel.Eq{"order_hash": orderHash, "chain_id": chainID, "is_valid": true}).
		Where(squirrel.GtOrEq{"validated_at": notBefore}).
		OrderBy("validated_at DESC", "id DESC").
		Limit(1)
	if err := q.db.Get(&result, stmt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to select escrow validation")
	}
	return &result, nil
}
