package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"want-salon-backend/models"
)

type recordingSender struct {
	name string
	fail map[string]error
	// recipients that make Send panic
	panics map[string]bool
	// recipients that block until the context ends
	hang map[string]bool

	mu   sync.Mutex
	sent map[string][]string
}

func newRecordingSender(name string) *recordingSender {
	return &recordingSender{
		name:   name,
		fail:   map[string]error{},
		panics: map[string]bool{},
		hang:   map[string]bool{},
		sent:   map[string][]string{},
	}
}

func (s *recordingSender) Name() string { return s.name }

func (s *recordingSender) Send(ctx context.Context, recipient, text string) error {
	if s.panics[recipient] {
		panic("boom")
	}
	if s.hang[recipient] {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := s.fail[recipient]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[recipient] = append(s.sent[recipient], text)
	return nil
}

func sampleEvent(kind EventKind) Event {
	return Event{
		Kind:   kind,
		Master: models.Master{ID: 1, Name: "Anna"},
		Appointment: models.Appointment{
			ID:          5,
			MasterID:    1,
			Date:        "2024-01-15",
			Time:        "10:00",
			Duration:    90,
			ClientName:  "Maria",
			Status:      models.StatusScheduled,
			CashPayment: 1000,
			CardPayment: 500.5,
		},
	}
}

func TestDispatcherFailingRecipientDoesNotBlockOthers(t *testing.T) {
	tg := newRecordingSender("telegram")
	tg.fail["1"] = errors.New("chat not found")
	tg.panics["2"] = true
	tg.hang["3"] = true
	sms := newRecordingSender("sms")

	d := NewDispatcher(zap.NewNop(), 50*time.Millisecond,
		Channel{Sender: tg, Recipients: []string{"1", "2", "3", "4"}},
		Channel{Sender: sms, Recipients: []string{"+79990000000"}},
	)

	delivered := d.Broadcast(context.Background(), "hello")
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}
	if len(tg.sent["4"]) != 1 || len(sms.sent["+79990000000"]) != 1 {
		t.Fatalf("healthy recipients missed: tg=%v sms=%v", tg.sent, sms.sent)
	}
}

func TestDispatcherIgnoresCallerCancellation(t *testing.T) {
	tg := newRecordingSender("telegram")
	d := NewDispatcher(zap.NewNop(), time.Second, Channel{Sender: tg, Recipients: []string{"1"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Publish(ctx, sampleEvent(EventCreated))
	if len(tg.sent["1"]) != 1 {
		t.Fatal("notification dropped after the request context ended")
	}
}

func TestFormatEventCreated(t *testing.T) {
	text := FormatEvent(sampleEvent(EventCreated))
	for _, want := range []string{
		"✨ <b>Новая запись</b>",
		"👤 <b>Мастер:</b> Anna",
		"📅 <b>Дата:</b> 2024-01-15",
		"🕐 <b>Время:</b> 10:00",
		"⏱ <b>Длительность:</b> 90 мин",
		"👥 <b>Клиент:</b> Maria",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Комментарий") {
		t.Error("empty comment should be omitted")
	}
}

func TestFormatEventEscapesUserText(t *testing.T) {
	e := sampleEvent(EventCreated)
	e.Appointment.ClientName = "<script>"
	e.Appointment.Comment = "a & b"
	text := FormatEvent(e)
	if strings.Contains(text, "<script>") || !strings.Contains(text, "&lt;script&gt;") {
		t.Fatalf("client name not escaped:\n%s", text)
	}
	if !strings.Contains(text, "💬 <b>Комментарий:</b> a &amp; b") {
		t.Fatalf("comment not rendered:\n%s", text)
	}
}

func TestFormatEventMoved(t *testing.T) {
	e := sampleEvent(EventMoved)
	e.PreviousDate, e.PreviousTime = "2024-01-14", "09:00"
	text := FormatEvent(e)
	if !strings.Contains(text, "<b>Было:</b> 2024-01-14 в 09:00\n<b>Стало:</b> 2024-01-15 в 10:00") {
		t.Fatalf("move lines missing:\n%s", text)
	}
}

func TestFormatEventEditedListsAllowedFieldsOnly(t *testing.T) {
	e := sampleEvent(EventEdited)
	e.Changes = []FieldChange{
		{Field: "status", Value: "completed"},
		{Field: "comment", Value: "new"},
		{Field: "duration", Value: 90},
	}
	text := FormatEvent(e)
	if !strings.Contains(text, "<b>Изменения:</b>\n• Комментарий: new\n• Длительность: 90\n") {
		t.Fatalf("changes block wrong:\n%s", text)
	}
	if strings.Contains(text, "completed") {
		t.Fatal("status is not a listed field")
	}

	e.Changes = []FieldChange{{Field: "payment", Value: models.Payment{Cash: 1}}}
	text = FormatEvent(e)
	if !strings.HasSuffix(text, "<b>Изменения:</b>\n") {
		t.Fatalf("header must stay even with no listed fields:\n%s", text)
	}
}

func TestFormatEventCompleted(t *testing.T) {
	text := FormatEvent(sampleEvent(EventCompleted))
	for _, want := range []string{
		"✅ <b>Запись проведена</b>",
		"💰 <b>Оплата:</b> 1500.5₽",
		"💵 Наличные: 1000₽",
		"💳 Безнал: 500.5₽",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestFormatCashRegister(t *testing.T) {
	text := FormatCashRegister(models.CashRegister{
		Date:              "2024-01-15",
		Total:             models.CashTotals{Cash: 1000, Card: 500, Total: 1500},
		AppointmentsCount: 2,
		Masters: map[string]models.MasterCash{
			"2": {Name: "Olga", Cash: 0, Card: 500, Total: 500, Count: 1},
			"1": {Name: "Anna", Cash: 1000, Card: 0, Total: 1000, Count: 1},
		},
	})
	if !strings.Contains(text, "Касса за 15 янв") || !strings.Contains(text, "📊 <b>Итого:</b> 1500.00₽") {
		t.Fatalf("header wrong:\n%s", text)
	}
	if strings.Index(text, "Anna") > strings.Index(text, "Olga") {
		t.Fatalf("masters should be ordered by id:\n%s", text)
	}

	if may := FormatCashRegister(models.CashRegister{Date: "2024-05-09"}); !strings.Contains(may, "9 май") {
		t.Fatalf("may date wrong:\n%s", may)
	}

	empty := FormatCashRegister(models.CashRegister{Date: "2024-03-08"})
	if !strings.Contains(empty, "8 мар") || !strings.Contains(empty, "Проведённых записей нет") {
		t.Fatalf("empty report wrong:\n%s", empty)
	}
}

type panickyPublisher struct{}

func (panickyPublisher) Publish(context.Context, Event) { panic("broker client bug") }

func TestFanOutSurvivesPanickingPublisher(t *testing.T) {
	after := &recordingPublisher{}
	fan := NewFanOut(zap.NewNop(), panickyPublisher{})
	fan.Add(after)

	fan.Publish(context.Background(), sampleEvent(EventCreated))
	if got := after.kinds(); len(got) != 1 || got[0] != EventCreated {
		t.Fatalf("publisher after the panic got %v", got)
	}
}
