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

// Expected schema: orders(id bigserial primary key, order_hash text unique,
// maker, taker, maker_asset, taker_asset, making_amount, taking_amount,
// src_chain_id, dst_chain_id, src_escrow_address, dst_escrow_address,
// hashlock, secret, signed_data, status, created_at, updated_at).
const ordersTable = "orders"

type orders struct {
	db *pgdb.DB
}

func NewOrders(db *pgdb.DB) data.Orders {
	return orders{db: db}
}

func (q orders) Insert(order data.Order) (*data.Order, error) {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	var inserted data.Order
	stmt := squirrel.Insert(ordersTable).
		SetMap(structs.Map(order)).
		Suffix("RETURNING *")
	if err := q.db.Get(&inserted, stmt); err != nil {
		return nil, errors.Wrap(err, "failed to insert order")
	}
	return &inserted, nil
}

func (q orders) Get(orderHash string) (*data.Order, error) {
	var result data.Order
	stmt := squirrel.Select("*").From(ordersTable).Where(squirrel.Eq{"order_hash": orderHash})
	if err := q.db.Get(&result, stmt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to select order")
	}
	return &result, nil
}

func (q orders) Select(filters data.OrderFilters, page pgdb.OffsetPageParams) (*data.OrdersPage, error) {
	base := squirrel.Select().From(ordersTable)
	base = applyFilters(base, filters)

	var total struct {
		Count int64 `db:"count"`
	}
	if err := q.db.Get(&total, base.Columns("count(*) as count")); err != nil {
		return nil, errors.Wrap(err, "failed to count orders")
	}

	if page.Limit == 0 {
		page.Limit = 15
	}
	if page.Order == "" {
		page.Order = pgdb.OrderTypeDesc
	}

	var rows []data.Order
	stmt := page.ApplyTo(applyFilters(squirrel.Select("*").From(ordersTable), filters), "created_at", "id")
	if err := q.db.Select(&rows, stmt); err != nil {
		return nil, errors.Wrap(err, "failed to select orders")
	}

	seen := int64(page.PageNumber)*int64(page.Limit) + int64(len(rows))
	return &data.OrdersPage{
		Orders:  rows,
		Total:   total.Count,
		HasMore: seen < total.Count,
	}, nil
}

func applyFilters(stmt squirrel.SelectBuilder, filters data.OrderFilters) squirrel.SelectBuilder {
	if filters.Status != nil {
		stmt = stmt.Where(squirrel.Eq{"status": *filters.Status})
	}
	if filters.Maker != nil {
		stmt = stmt.Where(squirrel.Eq{"maker": *filters.Maker})
	}
	if filters.Asset != nil {
		stmt = stmt.Where(squirrel.Or{
			squirrel.Eq{"maker_asset": *filters.Asset},
			squirrel.Eq{"taker_asset": *filters.Asset},
		})
	}
	if filters.ChainID != nil {
		stmt = stmt.Where(squirrel.Or{
			squirrel.Eq{"src_chain_id": *filters.ChainID},
			squirrel.Eq{"dst_chain_id": *filters.ChainID},
		})
	}
	return stmt
}

// UpdateStatus takes a row lock so two resolvers racing on the same order
// cannot both pass the transition check.
func (q orders) UpdateStatus(orderHash string, to data.OrderStatus) (*data.Order, error) {
	var updated data.Order
	err := q.db.Transaction(func() error {
		var current data.Order
		stmt := squirrel.Select("*").From(ordersTable).
			Where(squirrel.Eq{"order_hash": orderHash}).
			Suffix("FOR UPDATE")
		if err := q.db.Get(&current, stmt); err != nil {
			if err == sql.ErrNoRows {
				return data.ErrOrderNotFound
			}
			return errors.Wrap(err, "failed to select order for update")
		}

		if !current.Status.CanTransitionTo(to) {
			return &data.InvalidTransitionError{From: current.Status, To: to}
		}

		update := squirrel.Update(ordersTable).
			SetMap(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()}).
			Where(squirrel.Eq{"order_hash": orderHash}).
			Suffix("RETURNING *")
		if err := q.db.Get(&updated, update); err != nil {
			return errors.Wrap(err, "failed to update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (q orders) SetEscrows(orderHash, srcEscrow, dstEscrow string) error {
	stmt := squirrel.Update(ordersTable).
		SetMap(map[string]interface{}{
			"src_escrow_address": srcEscrow,
			"dst_escrow_address": dstEscrow,
			"updated_at":         time.Now().UTC(),
		}).
		Where(squirrel.Eq{"order_hash": orderHash})
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to set escrow addresses")
}

func (q orders) SetSecret(orderHash, ciphertext string) error {
	stmt := squirrel.Update(ordersTable).
		SetMap(map[string]interface{}{
			"secret":     ciphertext,
			"updated_at": time.Now().UTC(),
		}).
		Where(squirrel.Eq{"order_hash": orderHash})
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to set order secret")
}
