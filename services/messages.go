package services

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"want-salon-backend/models"
	"want-salon-backend/utils"
)

// fields an edit notification lists, in display order
var editLabels = []struct{ field, label string }{
	{"time", "Время"},
	{"date", "Дата"},
	{"clientName", "Клиент"},
	{"comment", "Комментарий"},
	{"duration", "Длительность"},
}

var monthsShort = []string{"янв", "фев", "мар", "апр", "май", "июн", "июл", "авг", "сен", "окт", "ноя", "дек"}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// humanDate renders 2024-01-15 as "15 янв"; anything unparsable is returned as is.
func humanDate(date string) string {
	t, err := utils.ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d %s", t.Day(), monthsShort[t.Month()-1])
}

func appointmentInfo(b *strings.Builder, master models.Master, a models.Appointment) {
	fmt.Fprintf(b, "👤 <b>Мастер:</b> %s\n", html.EscapeString(master.Name))
	fmt.Fprintf(b, "📅 <b>Дата:</b> %s\n", a.Date)
	fmt.Fprintf(b, "🕐 <b>Время:</b> %s\n", html.EscapeString(a.Time))
	fmt.Fprintf(b, "⏱ <b>Длительность:</b> %d мин\n", a.Duration)
	fmt.Fprintf(b, "👥 <b>Клиент:</b> %s\n", html.EscapeString(a.ClientName))
	if a.Comment != "" {
		fmt.Fprintf(b, "💬 <b>Комментарий:</b> %s\n", html.EscapeString(a.Comment))
	}
}

// FormatEvent renders the HTML notification for a ledger event.
func FormatEvent(e Event) string {
	var b strings.Builder
	switch e.Kind {
	case EventCreated:
		b.WriteString("✨ <b>Новая запись</b>\n\n")
		appointmentInfo(&b, e.Master, e.Appointment)
	case EventCancelled:
		b.WriteString("❌ <b>Запись отменена</b>\n\n")
		appointmentInfo(&b, e.Master, e.Appointment)
	case EventMoved:
		b.WriteString("🔄 <b>Запись перенесена</b>\n\n")
		fmt.Fprintf(&b, "<b>Было:</b> %s в %s\n", e.PreviousDate, html.EscapeString(e.PreviousTime))
		fmt.Fprintf(&b, "<b>Стало:</b> %s в %s\n\n", e.Appointment.Date, html.EscapeString(e.Appointment.Time))
		appointmentInfo(&b, e.Master, e.Appointment)
	case EventEdited:
		b.WriteString("✏️ <b>Запись отредактирована</b>\n\n")
		appointmentInfo(&b, e.Master, e.Appointment)
		b.WriteString("\n<b>Изменения:</b>\n")
		for _, l := range editLabels {
			for _, c := range e.Changes {
				if c.Field == l.field {
					fmt.Fprintf(&b, "• %s: %s\n", l.label, html.EscapeString(fmt.Sprint(c.Value)))
				}
			}
		}
	case EventCompleted:
		b.WriteString("✅ <b>Запись проведена</b>\n\n")
		appointmentInfo(&b, e.Master, e.Appointment)
		p := e.Appointment.Payment()
		fmt.Fprintf(&b, "\n💰 <b>Оплата:</b> %s₽\n", formatMoney(p.Total()))
		fmt.Fprintf(&b, "💵 Наличные: %s₽\n", formatMoney(p.Cash))
		fmt.Fprintf(&b, "💳 Безнал: %s₽\n", formatMoney(p.Card))
	default:
		return ""
	}
	return b.String()
}

// FormatCashRegister renders the daily cash summary.
func FormatCashRegister(r models.CashRegister) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 <b>Касса за %s</b>\n\n", humanDate(r.Date))
	if r.AppointmentsCount == 0 {
		b.WriteString("Проведённых записей нет\n")
		return b.String()
	}
	fmt.Fprintf(&b, "📊 <b>Итого:</b> %.2f₽\n", r.Total.Total)
	fmt.Fprintf(&b, "💵 Наличные: %.2f₽\n", r.Total.Cash)
	fmt.Fprintf(&b, "💳 Безнал: %.2f₽\n", r.Total.Card)
	fmt.Fprintf(&b, "📝 Записей: %d\n", r.AppointmentsCount)

	ids := make([]string, 0, len(r.Masters))
	for id := range r.Masters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.ParseInt(ids[i], 10, 64)
		c, _ := strconv.ParseInt(ids[j], 10, 64)
		return a < c
	})

	b.WriteString("\n<b>По мастерам:</b>\n")
	for _, id := range ids {
		m := r.Masters[id]
		fmt.Fprintf(&b, "\n👤 <b>%s</b> (%d)\n", html.EscapeString(m.Name), m.Count)
		fmt.Fprintf(&b, "   %.2f₽ (нал %.2f₽ / безнал %.2f₽)\n", m.Total, m.Cash, m.Card)
	}
	return b.String()
}
