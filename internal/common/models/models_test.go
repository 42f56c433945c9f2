package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("6F9619FF-8B86-D011-B42D-00CF4FC964FF")
	require.NoError(t, err)
	assert.Equal(t, ID("6f9619ff-8b86-d011-b42d-00cf4fc964ff"), id)

	_, err = ParseID("not-a-uuid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	assert.True(t, SystemUserID.IsSystem())
	assert.False(t, NextID().IsSystem())
	assert.True(t, IsValidID(NextID().String()))
}

func TestModelNotFoundError(t *testing.T) {
	err := NewModelNotFoundError("CompanyAccount", "a", "b")
	assert.True(t, errors.Is(err, ErrModelNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "no query results for model [CompanyAccount] a, b", err.Error())
}

func TestPaginator(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		page     int
		perPage  int
		lastPage int
		onLast   bool
	}{
		{name: "empty", total: 0, page: 1, perPage: 10, lastPage: 0, onLast: true},
		{name: "exact", total: 20, page: 1, perPage: 10, lastPage: 2, onLast: false},
		{name: "remainder", total: 21, page: 3, perPage: 10, lastPage: 3, onLast: true},
		{name: "zero per page", total: 3, page: 1, perPage: 0, lastPage: 3, onLast: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginator[string](nil, tt.total, tt.page, tt.perPage)
			assert.Equal(t, tt.lastPage, p.LastPage())
			assert.Equal(t, tt.onLast, p.IsOnLastPage())
			assert.NotNil(t, p.Items())
		})
	}
}

func TestPagedListFilters(t *testing.T) {
	f := NewPagedListFilters(map[string]string{"created_at": "created_at"}, "created_at")
	assert.Equal(t, 1, f.Page())
	assert.Equal(t, DefaultPerPage, f.PerPage())
	assert.Equal(t, "created_at", f.SortBy())
	assert.Equal(t, SortDesc, f.SortDir())

	f.SetPage(3)
	f.SetPerPage(25)
	assert.Equal(t, 50, f.Offset())

	f.SetPerPage(101)
	assert.Equal(t, DefaultPerPage, f.PerPage())
	f.SetPerPage(0)
	assert.Equal(t, DefaultPerPage, f.PerPage())
	f.SetPage(-1)
	assert.Equal(t, 1, f.Page())

	require.NoError(t, f.SetSortDir("ASC"))
	assert.Equal(t, SortAsc, f.SortDir())
	require.NoError(t, f.SetSortBy(""))

	err := f.SetSortBy("title")
	assert.True(t, errors.Is(err, ErrValidation))
	err = f.SetSortDir("sideways")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, SortAsc, f.SortDir())
}
