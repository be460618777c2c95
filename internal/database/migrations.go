package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tenant_id UUID NOT NULL,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(tenant_id, email)
	)`,

	// Courses, presentations, quizzes and tutorials share one table; the
	// authoring routes own the shape of data.
	`CREATE TABLE IF NOT EXISTS content_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tenant_id UUID NOT NULL,
		content_type VARCHAR(20) NOT NULL,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS collaborations (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL,
		content_id UUID NOT NULL,
		content_type VARCHAR(20) NOT NULL,
		owner_id UUID NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		document JSONB NOT NULL,
		revision INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(content_id, content_type, tenant_id)
	)`,

	`CREATE TABLE IF NOT EXISTS shares (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL,
		content_id UUID NOT NULL,
		content_type VARCHAR(20) NOT NULL,
		shared_by UUID NOT NULL,
		share_type VARCHAR(20) NOT NULL,
		recipients JSONB NOT NULL DEFAULT '[]',
		permissions JSONB NOT NULL DEFAULT '{}',
		settings JSONB NOT NULL DEFAULT '{}',
		password_hash VARCHAR(255),
		expires_at TIMESTAMP WITH TIME ZONE,
		comments JSONB NOT NULL DEFAULT '[]',
		comment_count INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		unique_views INTEGER NOT NULL DEFAULT 0,
		downloads INTEGER NOT NULL DEFAULT 0,
		last_accessed TIMESTAMP WITH TIME ZONE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		share_token VARCHAR(16) UNIQUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(64) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_content_items_tenant_id ON content_items(tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_collaborations_tenant_owner ON collaborations(tenant_id, owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_collaborations_members ON collaborations USING gin ((document->'members') jsonb_path_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_shares_tenant_content ON shares(tenant_id, content_id, content_type)`,
	`CREATE INDEX IF NOT EXISTS idx_shares_shared_by ON shares(tenant_id, shared_by)`,
	`CREATE INDEX IF NOT EXISTS idx_shares_expires_at ON shares(expires_at) WHERE is_active`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
