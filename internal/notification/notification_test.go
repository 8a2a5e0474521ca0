package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/decision"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

type mockAlertSender struct {
	mock.Mock
}

func (m *mockAlertSender) Send(ctx context.Context, url string, alert port.Alert) error {
	args := m.Called(ctx, url, alert)
	return args.Error(0)
}

type mockMessageSender struct {
	mock.Mock
}

func (m *mockMessageSender) SendText(ctx context.Context, chatID, content string) error {
	args := m.Called(ctx, chatID, content)
	return args.Error(0)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex  string
		want int
	}{
		{"#ff0000", 16711680},
		{"#aaaaaa", 11184810},
		{"#00ff00", 65280},
		{"ff9200", 16749056},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.hex)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.hex)
	}

	_, err := ParseHexColor("#fff")
	assert.Error(t, err)
	_, err = ParseHexColor("#zzzzzz")
	assert.Error(t, err)

	assert.Equal(t, 16711680, ColorFailure)
	assert.Equal(t, 16749056, ColorCheckOut)
}

func TestNotifier_Failure_UsesAccountWebhook(t *testing.T) {
	sender := new(mockAlertSender)
	sender.On("Send", mock.Anything, "https://hooks.example.com/alice", port.Alert{
		Title:       "Punching failed [alice]",
		Description: "Kindly punch manually\n\nFailed to get valid token",
		Color:       ColorFailure,
	}).Return(nil)

	n := NewNotifier(sender, zap.NewNop(), WithDefaultWebhook("https://hooks.example.com/default"))
	err := n.Failure(context.Background(), &entity.Account{Username: "alice", WebhookURL: "https://hooks.example.com/alice"}, "Failed to get valid token")

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestNotifier_Info_FallsBackToDefault(t *testing.T) {
	sender := new(mockAlertSender)
	sender.On("Send", mock.Anything, "https://hooks.example.com/default", mock.MatchedBy(func(a port.Alert) bool {
		return a.Title == "Punching skipped [bob]" && a.Color == ColorSkip
	})).Return(nil)

	n := NewNotifier(sender, zap.NewNop(), WithDefaultWebhook("https://hooks.example.com/default"))
	err := n.Info(context.Background(), &entity.Account{Username: "bob"}, "Punching skipped [bob]", "Because of applied leaves on records", ColorSkip)

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestNotifier_Skipped(t *testing.T) {
	sender := new(mockAlertSender)
	sender.On("Send", mock.Anything, "https://hooks.example.com/default", port.Alert{
		Title:       "Punching skipped [bob]",
		Description: "Because of non-working day",
		Color:       ColorSkip,
	}).Return(nil)

	n := NewNotifier(sender, zap.NewNop(), WithDefaultWebhook("https://hooks.example.com/default"))
	require.NoError(t, n.Skipped(context.Background(), &entity.Account{Username: "bob"}, "Because of non-working day"))

	sender.AssertExpectations(t)
}

func TestNotifier_Punched(t *testing.T) {
	tests := []struct {
		name      string
		direction decision.Direction
		account   *entity.Account
		want      port.Alert
	}{
		{
			name:      "check in uses employee id",
			direction: decision.DirectionIn,
			account:   &entity.Account{Username: "alice", EmployeeID: "1042", WebhookURL: "https://hooks.example.com/a"},
			want: port.Alert{
				Title:       "Attendance CheckIn",
				Description: "**1042** has checked in at 2024-03-07T08:01.",
				Color:       ColorCheckIn,
			},
		},
		{
			name:      "check out falls back to username",
			direction: decision.DirectionOut,
			account:   &entity.Account{Username: "alice", WebhookURL: "https://hooks.example.com/a"},
			want: port.Alert{
				Title:       "Attendance CheckOut",
				Description: "**alice** has checked out at 2024-03-07T08:01.",
				Color:       ColorCheckOut,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(mockAlertSender)
			sender.On("Send", mock.Anything, "https://hooks.example.com/a", tt.want).Return(nil)

			n := NewNotifier(sender, zap.NewNop())
			require.NoError(t, n.Punched(context.Background(), tt.account, tt.direction, "2024-03-07T08:01"))

			sender.AssertExpectations(t)
		})
	}
}

func TestNotifier_NoTargetIsNoop(t *testing.T) {
	sender := new(mockAlertSender)
	n := NewNotifier(sender, zap.NewNop())

	err := n.Failure(context.Background(), &entity.Account{Username: "carol"}, "boom")

	require.NoError(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifier_SendError(t *testing.T) {
	sender := new(mockAlertSender)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("502"))

	n := NewNotifier(sender, zap.NewNop(), WithDefaultWebhook("https://hooks.example.com/default"))
	err := n.Failure(context.Background(), &entity.Account{Username: "alice"}, "boom")

	assert.Error(t, err)
}

func TestNotifier_MirrorsToChat(t *testing.T) {
	sender := new(mockAlertSender)
	mirror := new(mockMessageSender)
	mirror.On("SendText", mock.Anything, "oc_1", "Punching failed [alice]\nKindly punch manually\n\nboom").Return(errors.New("lark down"))

	n := NewNotifier(sender, zap.NewNop(), WithMirror(mirror, "oc_1"))
	err := n.Failure(context.Background(), &entity.Account{Username: "alice"}, "boom")

	require.NoError(t, err, "mirror errors are logged only")
	mirror.AssertExpectations(t)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookSender_Send(t *testing.T) {
	var payload map[string][]map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewWebhookSender(time.Second, zap.NewNop())
	err := s.Send(context.Background(), srv.URL, port.Alert{Title: "Checked In", Description: "**1042** has checked in at 2024-03-07T08:01.", Color: ColorCheckIn})

	require.NoError(t, err)
	require.Len(t, payload["embeds"], 1)
	assert.Equal(t, "Checked In", payload["embeds"][0]["title"])
	assert.Equal(t, float64(65280), payload["embeds"][0]["color"])
}

func TestWebhookSender_Send_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewWebhookSender(time.Second, zap.NewNop())
	err := s.Send(context.Background(), srv.URL, port.Alert{Title: "x"})

	assert.Error(t, err)
}
