package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250601-000000",
		Description: "Initial schema",
		Up: []string{
			// LINE users - accounts captured through the login flow
			// line_user_id is the platform ID (U-prefixed), unique per account
			`CREATE TABLE IF NOT EXISTS line_users (
				id TEXT PRIMARY KEY,
				line_user_id TEXT UNIQUE NOT NULL,
				display_name TEXT NOT NULL,
				picture_url TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_line_users_line_user_id ON line_users(line_user_id)`,

			// Form submissions - audit trail of form linkages per LINE user
			`CREATE TABLE IF NOT EXISTS form_submissions (
				id TEXT PRIMARY KEY,
				line_user_id TEXT NOT NULL,
				form_url TEXT NOT NULL,
				additional_message TEXT,
				success INTEGER NOT NULL DEFAULT 1,
				submitted_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_form_submissions_line_user_id ON form_submissions(line_user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_form_submissions_submitted_at ON form_submissions(submitted_at)`,
		},
	})
}
