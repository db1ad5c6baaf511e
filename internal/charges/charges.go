// Package charges holds the singleton tax / service-charge configuration
// applied to every bill computation. An unset configuration means zero
// percentages, never an error.
package charges

import (
	"context"
	"errors"

	"cassa-pos-services/internal/db"

	"github.com/jackc/pgx/v5"
)

type Percentages struct {
	TaxPercent           float64 `json:"taxPercent"`
	ServiceChargePercent float64 `json:"serviceChargePercent"`
}

func Current(ctx context.Context, dbx db.DBTX) (Percentages, error) {
	var p Percentages
	err := dbx.QueryRow(ctx, `
		select tax_percent, service_charge_percent from charges where id = 1
	`).Scan(&p.TaxPercent, &p.ServiceChargePercent)
	if errors.Is(err, pgx.ErrNoRows) {
		return Percentages{}, nil
	}
	if err != nil {
		return Percentages{}, err
	}
	return p, nil
}

func Update(ctx context.Context, dbx db.DBTX, p Percentages) error {
	_, err := dbx.Exec(ctx, `
		insert into charges (id, tax_percent, service_charge_percent)
		values (1, $1, $2)
		on conflict (id) do update set tax_percent = $1, service_charge_percent = $2
	`, p.TaxPercent, p.ServiceChargePercent)
	return err
}
