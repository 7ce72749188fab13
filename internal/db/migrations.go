package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('SUPER_ADMIN', 'LEGAL_USER', 'FINANCE_REVIEWER', 'CLIENT');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM (
				'DRAFT', 'PENDING_FINANCE', 'PENDING_CLIENT', 'ACTIVE',
				'REJECTED_BY_FINANCE', 'REJECTED_BY_CLIENT'
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(128) NOT NULL,
		role user_role NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_username ON users (username);`,
	`CREATE TABLE IF NOT EXISTS approval_mappings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		legal_user_id UUID NOT NULL REFERENCES users(id),
		finance_user_id UUID NOT NULL REFERENCES users(id),
		client_user_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_approval_mappings_chain
		ON approval_mappings (legal_user_id, finance_user_id, client_user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_approval_mappings_legal ON approval_mappings (legal_user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_approval_mappings_finance ON approval_mappings (finance_user_id);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(256) NOT NULL,
		client_user_id UUID NOT NULL REFERENCES users(id),
		effective_date DATE NOT NULL,
		amount NUMERIC(18,2) NOT NULL CHECK (amount >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_client ON contracts (client_user_id);`,
	`CREATE TABLE IF NOT EXISTS contract_versions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		version_number INT NOT NULL CHECK (version_number >= 1),
		status contract_status NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		creator_id UUID NOT NULL REFERENCES users(id),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_versions_number
		ON contract_versions (contract_id, version_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_versions_latest
		ON contract_versions (contract_id, version_number DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_versions_status ON contract_versions (status);`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		action VARCHAR(64) NOT NULL,
		actor_id UUID NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log (created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id),
		message TEXT NOT NULL,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
