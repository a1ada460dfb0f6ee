package subscriptions_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/internal/subscriptions"
	"github.com/dmitrymomot/newsletter/internal/templates"
	"github.com/dmitrymomot/newsletter/pkg/email"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Register(ctx context.Context, id uuid.UUID, sub domain.NewSubscriber, token domain.Token) (domain.Token, error) {
	args := m.Called(ctx, id, sub, token)
	return args.Get(0).(domain.Token), args.Error(1)
}

func (m *mockStore) Confirm(ctx context.Context, token domain.Token) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	return m.Called(ctx, params).Error(0)
}

func newService(store *mockStore, sender *mockSender) *subscriptions.Service {
	return subscriptions.NewService(store, sender, templates.MustNew(), "https://news.example.com/")
}

func TestService_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("mails the confirmation link", func(t *testing.T) {
		t.Parallel()
		store, sender := &mockStore{}, &mockSender{}
		stored := newToken(t)

		store.On("Register", mock.Anything, mock.Anything, leGuin(t), mock.Anything).Return(stored, nil).Once()
		sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			link := "https://news.example.com/subscriptions/confirm?subscription_token=" + stored.String()
			return p.To == "ursula_le_guin@gmail.com" &&
				p.Subject == "Welcome!" &&
				strings.Contains(p.Text, link) &&
				strings.Contains(p.HTML, link)
		})).Return(nil).Once()

		err := newService(store, sender).Subscribe(context.Background(), "ursula_le_guin@gmail.com", "le guin")
		require.NoError(t, err)
		store.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("invalid input touches nothing", func(t *testing.T) {
		t.Parallel()
		store, sender := &mockStore{}, &mockSender{}

		err := newService(store, sender).Subscribe(context.Background(), "not-an-email", "")
		assert.ErrorIs(t, err, subscriptions.ErrInvalidSubscriber)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.ErrorIs(t, err, domain.ErrInvalidName)
		store.AssertNotCalled(t, "Register")
		sender.AssertNotCalled(t, "SendEmail")
	})

	t.Run("confirmed subscriber gets no mail", func(t *testing.T) {
		t.Parallel()
		store, sender := &mockStore{}, &mockSender{}
		store.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(domain.Token{}, subscriptions.ErrSubscriberConfirmed).Once()

		err := newService(store, sender).Subscribe(context.Background(), "ursula_le_guin@gmail.com", "le guin")
		assert.ErrorIs(t, err, subscriptions.ErrSubscriberConfirmed)
		sender.AssertNotCalled(t, "SendEmail")
	})

	t.Run("send failure", func(t *testing.T) {
		t.Parallel()
		store, sender := &mockStore{}, &mockSender{}
		store.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(newToken(t), nil).Once()
		sender.On("SendEmail", mock.Anything, mock.Anything).Return(email.ErrFailedToSendEmail).Once()

		err := newService(store, sender).Subscribe(context.Background(), "ursula_le_guin@gmail.com", "le guin")
		assert.ErrorIs(t, err, subscriptions.ErrSendConfirmation)
	})
}

func TestService_Confirm(t *testing.T) {
	t.Parallel()

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		err := newService(store, &mockSender{}).Confirm(context.Background(), "short")
		assert.ErrorIs(t, err, subscriptions.ErrInvalidToken)
		store.AssertNotCalled(t, "Confirm")
	})

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		tok := newToken(t)
		store.On("Confirm", mock.Anything, tok).Return(uuid.New(), nil).Once()

		require.NoError(t, newService(store, &mockSender{}).Confirm(context.Background(), tok.String()))
		store.AssertExpectations(t)
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	postForm := func(h http.Handler, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("subscribe", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			form      url.Values
			storeErr  error
			wantCode  int
			wantCalls bool
		}{
			{
				name:      "valid",
				form:      url.Values{"name": {"le guin"}, "email": {"ursula_le_guin@gmail.com"}},
				wantCode:  http.StatusOK,
				wantCalls: true,
			},
			{name: "missing email", form: url.Values{"name": {"le guin"}}, wantCode: http.StatusBadRequest},
			{name: "missing name", form: url.Values{"email": {"ursula_le_guin@gmail.com"}}, wantCode: http.StatusBadRequest},
			{name: "empty name", form: url.Values{"name": {""}, "email": {"ursula_le_guin@gmail.com"}}, wantCode: http.StatusBadRequest},
			{name: "invalid email", form: url.Values{"name": {"Ursula"}, "email": {"definitely-not-an-email"}}, wantCode: http.StatusBadRequest},
			{
				name:     "already confirmed",
				form:     url.Values{"name": {"le guin"}, "email": {"ursula_le_guin@gmail.com"}},
				storeErr: subscriptions.ErrSubscriberConfirmed,
				wantCode: http.StatusNotAcceptable,
			},
			{
				name:     "database down",
				form:     url.Values{"name": {"le guin"}, "email": {"ursula_le_guin@gmail.com"}},
				storeErr: errors.Join(subscriptions.ErrStorage, errors.New("connection refused")),
				wantCode: http.StatusInternalServerError,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				store, sender := &mockStore{}, &mockSender{}
				tok := newToken(t)
				if tt.storeErr != nil {
					tok = domain.Token{}
				}
				store.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tok, tt.storeErr).Maybe()
				sender.On("SendEmail", mock.Anything, mock.Anything).Return(nil).Maybe()

				rec := postForm(newService(store, sender).Handle(), tt.form)
				assert.Equal(t, tt.wantCode, rec.Code)
				if tt.wantCalls {
					sender.AssertNumberOfCalls(t, "SendEmail", 1)
				} else {
					sender.AssertNotCalled(t, "SendEmail")
				}
			})
		}
	})

	t.Run("confirm", func(t *testing.T) {
		t.Parallel()

		tok := newToken(t)
		store := &mockStore{}
		store.On("Confirm", mock.Anything, tok).Return(uuid.New(), nil).Once()
		store.On("Confirm", mock.Anything, tok).Return(uuid.Nil, subscriptions.ErrTokenNotFound).Once()
		h := newService(store, &mockSender{}).Handle()

		get := func(query string) int {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/confirm"+query, nil))
			return rec.Code
		}

		assert.Equal(t, http.StatusBadRequest, get(""))
		assert.Equal(t, http.StatusBadRequest, get("?subscription_token=abc"))
		assert.Equal(t, http.StatusOK, get("?subscription_token="+tok.String()))
		assert.Equal(t, http.StatusUnauthorized, get("?subscription_token="+tok.String()))
	})
}
