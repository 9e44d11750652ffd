package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMember(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := MemberRecord{
		RunID:       "run-1",
		MemberID:    "https://x/m1",
		ArtifactURI: "file:///cache/abc.nt",
		HarvestedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec("INSERT INTO harvested_members").
		WithArgs(rec.MemberID, rec.RunID, rec.ArtifactURI, rec.HarvestedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p := newWithPool(mock)
	require.NoError(t, p.RecordMember(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMemberError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO harvested_members").
		WithArgs("m1", "run-1", "uri", pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	p := newWithPool(mock)
	err = p.RecordMember(context.Background(), MemberRecord{
		RunID:       "run-1",
		MemberID:    "m1",
		ArtifactURI: "uri",
		HarvestedAt: time.Now(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert member record")
}

func TestRecordPage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := PageRecord{
		RunID:       "run-1",
		URL:         "https://x/1",
		Members:     7,
		ProcessedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec("INSERT INTO processed_pages").
		WithArgs(rec.URL, rec.RunID, rec.Members, rec.ProcessedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p := newWithPool(mock)
	require.NoError(t, p.RecordPage(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoOpProvider(t *testing.T) {
	p := NoOpProvider{}
	assert.NoError(t, p.RecordMember(context.Background(), MemberRecord{}))
	assert.NoError(t, p.RecordPage(context.Background(), PageRecord{}))
	assert.NoError(t, p.Close())
}
