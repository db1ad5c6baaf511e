package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema applies the idempotent DDL at startup. Statements are ordered
// by dependency; each runs on its own so a partial failure names the table.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`create table if not exists accounts (
			id bigserial primary key,
			username text not null unique,
			password_hash text not null,
			role text not null default 'TABLE',
			table_number int,
			created_at timestamptz not null default now(),
			last_login_at timestamptz
		)`,
		`create table if not exists menu_items (
			id bigserial primary key,
			name text not null,
			price double precision not null,
			category text not null,
			is_available boolean not null default true,
			created_at timestamptz not null default now()
		)`,
		`create table if not exists charges (
			id smallint primary key default 1 check (id = 1),
			tax_percent double precision not null default 0,
			service_charge_percent double precision not null default 0
		)`,
		`create table if not exists cart_sessions (
			visit_token text primary key,
			table_number int not null,
			lines jsonb not null default '[]'::jsonb,
			updated_at timestamptz not null default now()
		)`,
		`create table if not exists orders (
			id bigserial primary key,
			table_number int not null,
			session_id text not null,
			status text not null default 'ACCEPTED',
			removed boolean not null default false,
			is_notified boolean not null default false,
			created_at timestamptz not null default now()
		)`,
		`create index if not exists orders_visit_idx on orders (table_number, session_id, created_at desc)`,
		`create table if not exists order_items (
			id bigserial primary key,
			order_id bigint not null references orders(id) on delete cascade,
			menu_item_id bigint not null,
			name text not null,
			price double precision not null,
			quantity int not null,
			total double precision not null
		)`,
		`create index if not exists order_items_order_idx on order_items (order_id)`,
		`create table if not exists payments (
			id bigserial primary key,
			table_number int not null,
			session_id text not null,
			subtotal double precision not null,
			tax double precision not null default 0,
			service_charge double precision not null default 0,
			total double precision not null,
			bill_number text not null,
			bill_date text not null,
			bill_time text not null,
			payment_method text,
			is_paid boolean not null default false,
			notified boolean not null default false,
			rating int,
			feedback text,
			created_at timestamptz not null default now()
		)`,
		// Structural guarantee: at most one open (unpaid) bill per visit.
		`create unique index if not exists payments_open_visit_idx
			on payments (table_number, session_id) where not is_paid`,
		`create table if not exists employees (
			id bigserial primary key,
			name text not null,
			phone text,
			date_of_birth date not null,
			staff text not null,
			employment_type text not null,
			is_active boolean not null default true,
			joined_at timestamptz not null default now(),
			left_at timestamptz
		)`,
		`create table if not exists order_events (
			id bigserial primary key,
			event_type text not null,
			payload jsonb not null,
			created_at timestamptz not null default now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema bootstrap: %w", err)
		}
	}
	return nil
}
