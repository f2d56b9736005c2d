package postgres

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/moleswap/moleswap-svc/internal/data"
	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Expected schema: order_secrets(order_hash text primary key, ciphertext text,
// created_at timestamp).
const secretsTable = "order_secrets"

type secrets struct {
	db *pgdb.DB
}

func NewSecrets(db *pgdb.DB) data.Secrets {
	return secrets{db: db}
}

func (q secrets) Store(orderHash, ciphertext string) error {
	stmt := squirrel.Insert(secretsTable).
		SetMap(map[string]interface{}{
			"order_hash": orderHash,
			"ciphertext": ciphertext,
			"created_at": time.Now().UTC(),
		}).
		Suffix("ON CONFLICT (order_hash) DO UPDATE SET ciphertext = EXCLUDED.ciphertext")
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to store secret")
}

func (q secrets) Get(orderHash string) (string, error) {
	var result struct {
		Ciphertext string `db:"ciphertext"`
	}
	stmt := squirrel.Select("ciphertext").From(secretsTable).Where(squirrel.Eq{"order_hash": orderHash})
	if err := q.db.Get(&result, stmt); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", errors.Wrap(err, "failed to select secret")
	}
	return result.Ciphertext, nil
}
