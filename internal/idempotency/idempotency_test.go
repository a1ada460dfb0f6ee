package idempotency_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsletter/internal/idempotency"
)

func TestParseKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "uuid", raw: uuid.NewString()},
		{name: "single byte", raw: "a"},
		{name: "49 bytes", raw: strings.Repeat("a", 49)},
		{name: "empty", raw: "", wantErr: true},
		{name: "50 bytes", raw: strings.Repeat("a", 50), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, err := idempotency.ParseKey(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, idempotency.ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, key.String())
		})
	}
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func mustKey(t *testing.T, raw string) idempotency.Key {
	t.Helper()
	key, err := idempotency.ParseKey(raw)
	require.NoError(t, err)
	return key
}

func TestStore_FreshRequest(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	store := idempotency.NewStore(mock)
	ctx := context.Background()
	userID := uuid.New()
	key := mustKey(t, "issue-1")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency").
		WithArgs(userID, "issue-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	action, err := store.TryProcessing(ctx, userID, key)
	require.NoError(t, err)
	require.NotNil(t, action.Tx)
	assert.Nil(t, action.Saved)

	mock.ExpectExec("UPDATE idempotency").
		WithArgs(userID, "issue-1", int16(http.StatusSeeOther),
			[]byte(`[{"name":"Location","value":"/admin/newsletters"}]`), []byte{}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	resp, err := store.SaveResponse(ctx, action.Tx, userID, key, idempotency.SeeOther("/admin/newsletters"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestStore_ReplaysSavedResponse(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	store := idempotency.NewStore(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency").
		WithArgs(userID, "issue-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectRollback()
	mock.ExpectQuery("SELECT response_status_code, response_headers, response_body").
		WithArgs(userID, "issue-1").
		WillReturnRows(pgxmock.NewRows([]string{"response_status_code", "response_headers", "response_body"}).
			AddRow(pgtype.Int2{Int16: http.StatusSeeOther, Valid: true},
				[]byte(`[{"name":"Location","value":"/admin/newsletters"}]`), []byte{}))

	action, err := store.TryProcessing(context.Background(), userID, mustKey(t, "issue-1"))
	require.NoError(t, err)
	assert.Nil(t, action.Tx)
	require.NotNil(t, action.Saved)
	assert.Equal(t, http.StatusSeeOther, action.Saved.StatusCode)
	assert.Equal(t, []idempotency.HeaderPair{{Name: "Location", Value: "/admin/newsletters"}}, action.Saved.Headers)
}

func TestStore_ReservationWithoutResponse(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	store := idempotency.NewStore(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency").
		WithArgs(userID, "issue-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectRollback()
	mock.ExpectQuery("SELECT response_status_code").
		WithArgs(userID, "issue-1").
		WillReturnRows(pgxmock.NewRows([]string{"response_status_code", "response_headers", "response_body"}).
			AddRow(pgtype.Int2{}, nil, nil))

	_, err := store.TryProcessing(context.Background(), userID, mustKey(t, "issue-1"))
	assert.ErrorIs(t, err, idempotency.ErrResponseNotSaved)
}

func TestStore_InsertFailureRollsBack(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	store := idempotency.NewStore(mock)
	userID := uuid.New()
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency").WithArgs(userID, "issue-1").WillReturnError(boom)
	mock.ExpectRollback()

	_, err := store.TryProcessing(context.Background(), userID, mustKey(t, "issue-1"))
	assert.ErrorIs(t, err, idempotency.ErrStorage)
	assert.ErrorIs(t, err, boom)
}

func TestStore_SaveFailureRollsBack(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	store := idempotency.NewStore(mock)
	ctx := context.Background()
	userID := uuid.New()
	key := mustKey(t, "issue-1")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency").
		WithArgs(userID, "issue-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE idempotency").
		WithArgs(userID, "issue-1", int16(http.StatusSeeOther), []byte(`[{"name":"Location","value":"/admin/newsletters"}]`), []byte{}).
		WillReturnError(errors.New("serialization failure"))
	mock.ExpectRollback()

	action, err := store.TryProcessing(ctx, userID, key)
	require.NoError(t, err)

	_, err = store.SaveResponse(ctx, action.Tx, userID, key, idempotency.SeeOther("/admin/newsletters"))
	assert.ErrorIs(t, err, idempotency.ErrStorage)
}

func TestResponse_Render(t *testing.T) {
	t.Parallel()

	resp := idempotency.Response{
		StatusCode: http.StatusAccepted,
		Headers: []idempotency.HeaderPair{
			{Name: "Content-Type", Value: "text/plain"},
			{Name: "X-Trace", Value: "a"},
			{Name: "X-Trace", Value: "b"},
		},
		Body: []byte("queued"),
	}

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Render(rec, httptest.NewRequest(http.MethodPost, "/", nil)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{"a", "b"}, rec.Header().Values("X-Trace"))
	assert.Equal(t, "queued", rec.Body.String())
}
