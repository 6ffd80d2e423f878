package repository

// dialect holds the DDL and the few statements that differ between drivers.
type dialect struct {
	name      string
	schema    []string
	upsertSet string
}

var sqliteDialect = &dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS catalog_sets (
			name TEXT PRIMARY KEY,
			code TEXT NOT NULL DEFAULT '',
			series TEXT NOT NULL DEFAULT '',
			packs_per_box INTEGER NOT NULL DEFAULT 30
		)`,
		`CREATE TABLE IF NOT EXISTS business_boxes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			set_name TEXT NOT NULL REFERENCES catalog_sets(name),
			purchase_date TEXT NOT NULL,
			source TEXT NOT NULL,
			price REAL NOT NULL,
			packs_opened INTEGER NOT NULL DEFAULT 0,
			packs_sold INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS stashed_boxes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			set_name TEXT NOT NULL REFERENCES catalog_sets(name),
			purchase_date TEXT NOT NULL,
			source TEXT NOT NULL,
			price REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pack_sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			set_name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			sale_price REAL NOT NULL,
			shipping_charged REAL NOT NULL,
			shipping_cost REAL NOT NULL,
			ebay_fees REAL NOT NULL,
			sale_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS slabs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cert_number TEXT NOT NULL UNIQUE,
			set_name TEXT NOT NULL,
			card_number TEXT NOT NULL,
			card_name TEXT NOT NULL,
			grade INTEGER NOT NULL,
			submission_date TEXT NOT NULL,
			return_date TEXT,
			status TEXT NOT NULL DEFAULT 'Submitted',
			psa_details_fetched INTEGER NOT NULL DEFAULT 0,
			psa_pop_higher INTEGER,
			psa_total_pop INTEGER,
			psa_label_type TEXT,
			front_image_path TEXT,
			back_image_path TEXT,
			sale_price REAL,
			shipping_charged REAL,
			shipping_cost REAL,
			ebay_fees REAL,
			sale_date TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_business_boxes_set ON business_boxes(set_name)`,
		`CREATE INDEX IF NOT EXISTS idx_stashed_boxes_set ON stashed_boxes(set_name)`,
		`CREATE INDEX IF NOT EXISTS idx_pack_sales_set ON pack_sales(set_name)`,
		`CREATE INDEX IF NOT EXISTS idx_slabs_status ON slabs(status)`,
	},
	upsertSet: `
		INSERT INTO catalog_sets (name, code, series, packs_per_box)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			code = excluded.code,
			series = excluded.series,
			packs_per_box = excluded.packs_per_box`,
}

var postgresDialect = &dialect{
	name: "postgres",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS catalog_sets (
			name VARCHAR(255) PRIMARY KEY,
			code VARCHAR(64) NOT NULL DEFAULT '',
			series VARCHAR(255) NOT NULL DEFAULT '',
			packs_per_box INTEGER NOT NULL DEFAULT 30
		)`,
		`CREATE TABLE IF NOT EXISTS business_boxes (
			id BIGSERIAL PRIMARY KEY,
			set_name VARCHAR(255) NOT NULL REFERENCES catalog_sets(name),
			purchase_date VARCHAR(10) NOT NULL,
			source VARCHAR(255) NOT NULL,
			price NUMERIC(12,2) NOT NULL,
			packs_opened INTEGER NOT NULL DEFAULT 0,
			packs_sold INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS stashed_boxes (
			id BIGSERIAL PRIMARY KEY,
			set_name VARCHAR(255) NOT NULL REFERENCES catalog_sets(name),
			purchase_date VARCHAR(10) NOT NULL,
			source VARCHAR(255) NOT NULL,
			price NUMERIC(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pack_sales (
			id BIGSERIAL PRIMARY KEY,
			set_name VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL,
			sale_price NUMERIC(12,2) NOT NULL,
			shipping_charged NUMERIC(12,2) NOT NULL,
			shipping_cost NUMERIC(12,2) NOT NULL,
			ebay_fees NUMERIC(12,2) NOT NULL,
			sale_date VARCHAR(10) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS slabs (
			id BIGSERIAL PRIMARY KEY,
			cert_number VARCHAR(64) NOT NULL UNIQUE,
			set_name VARCHAR(255) NOT NULL,
			card_number VARCHAR(64) NOT NULL,
			card_name TEXT NOT NULL,
			grade INTEGER NOT NULL,
			submission_date VARCHAR(10) NOT NULL,
			return_date VARCHAR(10),
			status VARCHAR(16) NOT NULL DEFAULT 'Submitted',
			psa_details_fetched BOOLEAN NOT NULL DEFAULT FALSE,
			psa_pop_higher INTEGER,
			psa_total_pop INTEGER,
			psa_label_type VARCHAR(64),
			front_image_path TEXT,
			back_image_path TEXT,
			sale_price NUMERIC(12,2),
			shipping_charged NUMERIC(12,2),
			shipping_cost NUMERIC(12,2),
			ebay_fees NUMERIC(12,2),
			sale_date VARCHAR(10)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_business_boxes_set ON business_boxes(set_name)`,
		`CREATE INDEX IF NOT EXISTS idx_stashed_boxes_set ON stashed_boxes(set_name)`,
		`CREATE INDEX IF NOT EXISTS idx_pack_sales_set ON pack_sales(set_name)`,
		`CREATE INDEX IF NOT EXISTS idx_slabs_status ON slabs(status)`,
	},
	upsertSet: `
		INSERT INTO catalog_sets (name, code, series, packs_per_box)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			code = EXCLUDED.code,
			series = EXCLUDED.series,
			packs_per_box = EXCLUDED.packs_per_box`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are declared inline.
var mysqlDialect = &dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS catalog_sets (
			name VARCHAR(255) NOT NULL PRIMARY KEY,
			code VARCHAR(64) NOT NULL DEFAULT '',
			series VARCHAR(255) NOT NULL DEFAULT '',
			packs_per_box INT NOT NULL DEFAULT 30
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS business_boxes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			set_name VARCHAR(255) NOT NULL,
			purchase_date VARCHAR(10) NOT NULL,
			source VARCHAR(255) NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			packs_opened INT NOT NULL DEFAULT 0,
			packs_sold INT NOT NULL DEFAULT 0,
			INDEX idx_business_boxes_set (set_name),
			FOREIGN KEY (set_name) REFERENCES catalog_sets(name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS stashed_boxes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			set_name VARCHAR(255) NOT NULL,
			purchase_date VARCHAR(10) NOT NULL,
			source VARCHAR(255) NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			INDEX idx_stashed_boxes_set (set_name),
			FOREIGN KEY (set_name) REFERENCES catalog_sets(name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS pack_sales (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			set_name VARCHAR(255) NOT NULL,
			quantity INT NOT NULL,
			sale_price DECIMAL(12,2) NOT NULL,
			shipping_charged DECIMAL(12,2) NOT NULL,
			shipping_cost DECIMAL(12,2) NOT NULL,
			ebay_fees DECIMAL(12,2) NOT NULL,
			sale_date VARCHAR(10) NOT NULL,
			INDEX idx_pack_sales_set (set_name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS slabs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			cert_number VARCHAR(64) NOT NULL UNIQUE,
			set_name VARCHAR(255) NOT NULL,
			card_number VARCHAR(64) NOT NULL,
			card_name TEXT NOT NULL,
			grade INT NOT NULL,
			submission_date VARCHAR(10) NOT NULL,
			return_date VARCHAR(10),
			status VARCHAR(16) NOT NULL DEFAULT 'Submitted',
			psa_details_fetched BOOLEAN NOT NULL DEFAULT FALSE,
			psa_pop_higher INT,
			psa_total_pop INT,
			psa_label_type VARCHAR(64),
			front_image_path TEXT,
			back_image_path TEXT,
			sale_price DECIMAL(12,2),
			shipping_charged DECIMAL(12,2),
			shipping_cost DECIMAL(12,2),
			ebay_fees DECIMAL(12,2),
			sale_date VARCHAR(10),
			INDEX idx_slabs_status (status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	upsertSet: `
		INSERT INTO catalog_sets (name, code, series, packs_per_box)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			code = VALUES(code),
			series = VALUES(series),
			packs_per_box = VALUES(packs_per_box)`,
}
