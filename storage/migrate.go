package storage

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*
var migrationsFS embed.FS

func (p *ProviderSQL) Migrate() error {
	// Get the embedded filesystem
	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to get embedded migrations directory: %w", err)
	}
	files, err := fs.ReadDir(migrationsDir, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	names := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".up.sql") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.executeMigration(migrationsDir, name); err != nil {
			p.logger.Error("failed to execute migration", "file", name, "error", err)
			return err
		}
	}
	p.logger.Debug("migrations executed", "count", len(names))
	return nil
}

func (p *ProviderSQL) executeMigration(migrationsDir fs.FS, fileName string) error {
	migrationContent, err := fs.ReadFile(migrationsDir, fileName)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", fileName, err)
	}
	return p.executeSQL(migrationContent)
}

func (p *ProviderSQL) executeSQL(sqlContent []byte) error {
	_, err := p.db.Exec(string(sqlContent))
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}
