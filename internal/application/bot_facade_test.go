//go:build !integration

package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wikiukbot/internal/application"
	"wikiukbot/internal/domain/model"
	"wikiukbot/internal/domain/ports/adapter"
	"wikiukbot/internal/infra/i18n"

	"github.com/google/go-cmp/cmp"
)

type mockInlineUC struct {
	got string
	ans *model.InlineAnswer
	err error
}

func (m *mockInlineUC) Answer(ctx context.Context, rawQuery string) (*model.InlineAnswer, error) {
	m.got = rawQuery
	return m.ans, m.err
}

func TestBotFacade_HandleInlineQuery(t *testing.T) {
	t.Run("forwards the raw query", func(t *testing.T) {
		want := &model.InlineAnswer{CacheSeconds: 60}
		uc := &mockInlineUC{ans: want}
		f := application.NewBotFacade(uc, i18n.MustDefault())

		got, err := f.HandleInlineQuery(context.Background(), "  Київ ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected the usecase answer to be returned as-is")
		}
		if uc.got != "  Київ " {
			t.Errorf("query should reach the usecase untouched, got %q", uc.got)
		}
	})

	t.Run("returns usecase errors unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		f := application.NewBotFacade(&mockInlineUC{err: boom}, i18n.MustDefault())
		if _, err := f.HandleInlineQuery(context.Background(), "x"); err != boom {
			t.Fatalf("expected boom, got %v", err)
		}
	})

	t.Run("missing usecase", func(t *testing.T) {
		f := application.NewBotFacade(nil, i18n.MustDefault())
		if _, err := f.HandleInlineQuery(context.Background(), "x"); err == nil {
			t.Fatal("expected an error without a usecase")
		}
	})
}

func TestBotFacade_HandleStart(t *testing.T) {
	f := application.NewBotFacade(&mockInlineUC{}, i18n.MustDefault())
	reply := f.HandleStart(context.Background(), "wikiukbot")

	if !reply.HTML || !reply.DisablePreview {
		t.Errorf("start reply should be HTML without link preview: %+v", reply)
	}
	if !strings.Contains(reply.Text, "@wikiukbot") {
		t.Errorf("start text should mention the bot username: %q", reply.Text)
	}
	want := [][]adapter.InlineButton{{{Text: "Спробувати", SwitchInlineQuery: "Ан-225 Мрія"}}}
	if diff := cmp.Diff(want, reply.Buttons); diff != "" {
		t.Errorf("buttons mismatch (-want +got):\n%s", diff)
	}
}

func TestBotFacade_HandlePrivacy(t *testing.T) {
	f := application.NewBotFacade(&mockInlineUC{}, i18n.MustDefault())
	reply := f.HandlePrivacy(context.Background())
	if !strings.HasPrefix(reply.Text, "Цей бот не збирає") {
		t.Errorf("unexpected privacy text %q", reply.Text)
	}
	if reply.HTML {
		t.Error("privacy text is plain")
	}
}
