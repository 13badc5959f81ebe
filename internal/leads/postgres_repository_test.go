package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(
			"lead-1", "2025-03-01 12:00:00", "1.2.3.4", "test-agent",
			"lead", "/laser.html", "", "Лазерная эпиляция",
			"Анна", "+79991234567", MethodWhatsApp, "",
			true, "2025-01",
			"yandex", "cpc", "spring", "", "",
			"", "",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresRepository(mock)
	err = repo.Record(context.Background(), &Record{
		ID:            "lead-1",
		Date:          "2025-03-01 12:00:00",
		IP:            "1.2.3.4",
		UA:            "test-agent",
		FormID:        "lead",
		Page:          "/laser.html",
		Service:       "Лазерная эпиляция",
		Name:          "Анна",
		Phone:         "+79991234567",
		ContactMethod: MethodWhatsApp,
		Consent:       true,
		PolicyVersion: "2025-01",
		Tracking: Tracking{
			UTMSource:   "yandex",
			UTMMedium:   "cpc",
			UTMCampaign: "spring",
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_RecordGeneratesID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(
			pgxmock.AnyArg(), "", "", "",
			"", "", "", "",
			"", "+79991234567", "", "",
			true, "",
			"", "", "", "", "",
			"", "",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.Record(context.Background(), &Record{Phone: "+79991234567", Consent: true}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_RecordWrapsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(
			pgxmock.AnyArg(), "", "", "",
			"", "", "", "",
			"", "", "", "",
			false, "",
			"", "", "", "", "",
			"", "",
		).
		WillReturnError(errors.New("connection refused"))

	repo := NewPostgresRepository(mock)
	err = repo.Record(context.Background(), &Record{})
	assert.ErrorContains(t, err, "leads: insert failed")
	require.NoError(t, mock.ExpectationsWereMet())
}
