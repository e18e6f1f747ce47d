package dummydb

import (
	"sync"

	"github.com/darasahub/darasa/core/material"
	"github.com/darasahub/darasa/core/profile"
)

type (
	DB struct {
		users *userTable
		study *studyTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*profile.Profile
	}

	studyTable struct {
		sync.RWMutex
		table map[string]*material.Material
		order []string // insertion order, mirrored to query results
	}
)

func Open() (*DB, error) {
	db := &DB{
		users: &userTable{table: make(map[string]*profile.Profile)},
		study: &studyTable{table: make(map[string]*material.Material)},
	}
	return db, nil
}
