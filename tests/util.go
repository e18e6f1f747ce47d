package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/darasahub/darasa/core"
	"github.com/darasahub/darasa/core/material"
	"github.com/darasahub/darasa/core/profile"
	logsvc "github.com/darasahub/darasa/services/logger"
)

// NewConfig returns a config suitable for tests: real defaults, short store
// timeout.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:              "TEST",
		Debug:            true,
		TestMode:         true,
		AppName:          "Darasa",
		SecretKey:        []byte("secret"),
		StoreTimeout:     2 * time.Second,
		MaterialCacheTTL: time.Minute,
		NoticeTimeout:    3 * time.Second,
	}
	return conf
}

// NewLogger returns a logger that stays quiet unless tests log verbosely.
func NewLogger() core.Logger {
	return logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
}

func CreateProfile(
	t *testing.T,
	repo profile.Repository,
	identityID, name string,
	age int,
	role string,
) profile.Profile {
	t.Helper()
	p := profile.Profile{Name: name, Age: age, Role: role}
	if err := repo.SetProfile(context.Background(), identityID, p); err != nil {
		t.Fatalf("createProfile() failed: %v", err)
	}
	return p
}

func CreateMaterial(
	t *testing.T,
	repo material.Repository,
	ownerID, title, description, url string,
) material.Material {
	t.Helper()
	m, err := repo.CreateMaterial(context.Background(), material.Material{
		Title:       title,
		Description: description,
		URL:         url,
		OwnerID:     ownerID,
	})
	if err != nil {
		t.Fatalf("createMaterial() failed: %v", err)
	}
	return m
}
