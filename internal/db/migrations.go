package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'proposal_kind') THEN
			CREATE TYPE proposal_kind AS ENUM ('technology_investment', 'project_investment', 'demand_response');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'proposal_status') THEN
			CREATE TYPE proposal_status AS ENUM ('pending', 'negotiating', 'contact_signing', 'contract_signed', 'completed', 'cancelled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'offer_status') THEN
			CREATE TYPE offer_status AS ENUM ('pending', 'accepted', 'rejected');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('in_progress', 'signed', 'completed', 'cancelled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'step_kind') THEN
			CREATE TYPE step_kind AS ENUM ('sign_contract', 'upload_attachments', 'complete_contract');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'step_status') THEN
			CREATE TYPE step_status AS ENUM ('pending', 'approved', 'rejected', 'cancelled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'party_side') THEN
			CREATE TYPE party_side AS ENUM ('A', 'B');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'approval_decision') THEN
			CREATE TYPE approval_decision AS ENUM ('pending', 'approved', 'rejected');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_log_status') THEN
			CREATE TYPE contract_log_status AS ENUM ('pending', 'completed', 'cancelled');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(320) NOT NULL UNIQUE,
		full_name VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS technologies (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(512) NOT NULL,
		submitter_id UUID REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(512) NOT NULL,
		owner_id UUID REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS project_technologies (
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		technology_id UUID NOT NULL REFERENCES technologies(id),
		PRIMARY KEY (project_id, technology_id)
	);`,
	`CREATE TABLE IF NOT EXISTS demands (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(512) NOT NULL,
		owner_id UUID REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS proposals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		kind proposal_kind NOT NULL,
		proposer_id UUID NOT NULL REFERENCES users(id),
		receiver_id UUID NOT NULL REFERENCES users(id),
		technology_id UUID REFERENCES technologies(id),
		project_id UUID REFERENCES projects(id),
		demand_id UUID REFERENCES demands(id),
		terms TEXT NOT NULL DEFAULT '',
		amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		status proposal_status NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_proposer ON proposals (proposer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_receiver ON proposals (receiver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals (status);`,
	`CREATE TABLE IF NOT EXISTS negotiation_messages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		proposal_id UUID NOT NULL REFERENCES proposals(id),
		sender_id UUID NOT NULL REFERENCES users(id),
		text TEXT NOT NULL DEFAULT '',
		is_offer BOOLEAN NOT NULL DEFAULT FALSE,
		offer_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_negotiation_messages_proposal ON negotiation_messages (proposal_id, created_at);`,
	`CREATE TABLE IF NOT EXISTS offers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		proposal_id UUID NOT NULL REFERENCES proposals(id),
		message_id UUID NOT NULL REFERENCES negotiation_messages(id),
		price NUMERIC(18,2) NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		status offer_status NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_offers_proposal ON offers (proposal_id);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_a UUID NOT NULL REFERENCES users(id),
		user_b UUID NOT NULL REFERENCES users(id),
		proposal_kind proposal_kind NOT NULL,
		proposal_id UUID NOT NULL REFERENCES proposals(id),
		offer_id UUID NOT NULL REFERENCES offers(id),
		price NUMERIC(18,2) NOT NULL,
		contract_file TEXT,
		status contract_status NOT NULL DEFAULT 'in_progress',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_offer ON contracts (offer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_user_a ON contracts (user_a);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_user_b ON contracts (user_b);`,
	`CREATE TABLE IF NOT EXISTS contract_technologies (
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		technology_id UUID NOT NULL REFERENCES technologies(id),
		PRIMARY KEY (contract_id, technology_id)
	);`,
	`CREATE TABLE IF NOT EXISTS contract_documents (
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		object_key TEXT NOT NULL,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (contract_id, object_key)
	);`,
	`CREATE TABLE IF NOT EXISTS contract_steps (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		step step_kind NOT NULL,
		status step_status NOT NULL DEFAULT 'pending',
		contract_file TEXT,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_steps_contract ON contract_steps (contract_id, step);`,
	`CREATE TABLE IF NOT EXISTS contract_step_attachments (
		step_id UUID NOT NULL REFERENCES contract_steps(id) ON DELETE CASCADE,
		object_key TEXT NOT NULL,
		PRIMARY KEY (step_id, object_key)
	);`,
	`CREATE TABLE IF NOT EXISTS contract_step_approvals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		step_id UUID NOT NULL REFERENCES contract_steps(id) ON DELETE CASCADE,
		party party_side NOT NULL,
		user_id UUID NOT NULL REFERENCES users(id),
		decision approval_decision NOT NULL DEFAULT 'pending',
		note TEXT,
		decided_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_step_approvals_party ON contract_step_approvals (step_id, party);`,
	`CREATE TABLE IF NOT EXISTS contract_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		proposal_kind proposal_kind NOT NULL,
		proposal_id UUID REFERENCES proposals(id),
		status contract_log_status NOT NULL DEFAULT 'pending',
		reason TEXT,
		is_done_contract BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_logs_contract ON contract_logs (contract_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
