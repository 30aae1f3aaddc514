// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/samaj-vote/models"
)

//go:embed zones.yaml
var defaultRegistry []byte

// zoneNamespace scopes the deterministic zone IDs derived from
// (election, code), so reseeding never mints new IDs.
var zoneNamespace = uuid.MustParse("6f1c2a4e-8d3b-4b7e-9a51-2c0e5d7f3a18")

type registryFile struct {
	Zones []registryZone `yaml:"zones"`
}

type registryZone struct {
	Code      string `yaml:"code"`
	Name      string `yaml:"name"`
	NameLocal string `yaml:"name_local"`
	Election  string `yaml:"election"`
	Seats     int    `yaml:"seats"`
}

// ZoneID returns the stable ID for a zone code within an election
func ZoneID(election models.ElectionType, code string) string {
	return uuid.NewSHA1(zoneNamespace, []byte(string(election)+"/"+strings.ToUpper(code))).String()
}

// DefaultRegistry returns the embedded zone registry
func DefaultRegistry() ([]models.Zone, error) {
	return ParseRegistry(defaultRegistry)
}

// ParseRegistry decodes and validates a YAML zone registry
func ParseRegistry(data []byte) ([]models.Zone, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse zone registry: %w", err)
	}
	if len(file.Zones) == 0 {
		return nil, errors.New("zone registry is empty")
	}

	seen := make(map[string]bool, len(file.Zones))
	zones := make([]models.Zone, 0, len(file.Zones))
	for i, z := range file.Zones {
		election, err := models.ParseElectionType(z.Election)
		if err != nil {
			return nil, fmt.Errorf("zone %d (%s): %w", i, z.Code, err)
		}
		if z.Code == "" || z.Name == "" {
			return nil, fmt.Errorf("zone %d: code and name are required", i)
		}
		if z.Seats < 1 {
			return nil, fmt.Errorf("zone %s/%s: seats must be at least 1", election, z.Code)
		}
		code := strings.ToUpper(z.Code)
		key := string(election) + "/" + code
		if seen[key] {
			return nil, fmt.Errorf("zone %s listed twice", key)
		}
		seen[key] = true

		zones = append(zones, models.Zone{
			ID:           ZoneID(election, code),
			Code:         code,
			Name:         z.Name,
			NameLocal:    z.NameLocal,
			SeatCount:    z.Seats,
			ElectionType: election,
		})
	}
	return zones, nil
}

// SeedZones upserts the registry. The frozen flag is left as it is.
func SeedZones(ctx context.Context, db *sql.DB, zones []models.Zone) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, z := range zones {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO zone (id, code, name, name_local, seat_count, election_type, is_frozen)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE)
			ON CONFLICT (code, election_type) DO UPDATE
			SET name = excluded.name, name_local = excluded.name_local, seat_count = excluded.seat_count
		`, z.ID, z.Code, z.Name, z.NameLocal, z.SeatCount, string(z.ElectionType))
		if err != nil {
			return fmt.Errorf("failed to seed zone %s/%s: %w", z.ElectionType, z.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit zone seed: %w", err)
	}
	return nil
}
