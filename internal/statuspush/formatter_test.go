package statuspush

import (
	"fmt"
	"testing"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/gameserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(v int) *int       { return &v }

var msk = time.FixedZone("MSK", 3*3600)

func TestRenderServerStatusOnline(t *testing.T) {
	snap := gameserver.ServerSnapshot{
		Online:          true,
		ServerName:      strp("Farm #1"),
		MapName:         strp("Elmcreek"),
		SlotsUsed:       intp(2),
		SlotsMax:        intp(8),
		SaveDate:        strp("2026-10-14"),
		Money:           intp(1234567),
		LastMonthProfit: intp(-8000),
		FieldsOwned:     intp(3),
		FieldsTotal:     intp(40),
		Vehicles:        intp(12),
		Players:         []string{"Alice", "Bob"},
		FetchedAt:       time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
	}
	msg := RenderServerStatus(snap, "https://stats.example/charts/daily.png", msk)
	assert.Equal(t, PanelServerStatus, msg.Panel)
	assert.Equal(t, "Состояние сервера Farming Simulator", msg.Title)
	for _, want := range []string{"🟢 Сервер работает", "Farm #1 | Elmcreek", "2 / 8", "1 234 567 $ / −8 000 €", "3 / 40", "12 единиц"} {
		assert.Contains(t, msg.Description, want)
	}
	assert.Equal(t, colorLoss, msg.Color)
	assert.Equal(t, "Alice, Bob", msg.Fields[0].Value)
	assert.Equal(t, "Последнее обновление: 2026-10-14 12:00:00", msg.Footer)
	assert.NotEmpty(t, msg.ImageURL)
}

func TestRenderServerStatusOffline(t *testing.T) {
	msg := RenderServerStatus(gameserver.ServerSnapshot{FetchedAt: time.Now()}, "", time.UTC)
	assert.Regexp(t, "^🔴 Сервер недоступен", msg.Description)
	assert.Contains(t, msg.Description, "— | —")
	assert.Equal(t, "—", msg.Fields[0].Value)
	assert.Equal(t, colorOffline, msg.Color)
	assert.Empty(t, msg.ImageURL)
}

func TestRenderTopWeek(t *testing.T) {
	items := []activity.PlayerHours{{Player: "Alice", Hours: 5}, {Player: "Bob", Hours: 2}, {Player: "Carl", Hours: 1}}
	msg := RenderTopWeek(items, 2, time.Date(2026, 10, 14, 9, 15, 0, 0, time.UTC), msk)
	assert.Equal(t, "📊 ТОП 2 игроков за неделю", msg.Title)
	assert.Equal(t, "1. Alice — 5 ч\n2. Bob — 2 ч", msg.Description)
	assert.Equal(t, "Нет данных за неделю.", RenderTopWeek(nil, 10, time.Now(), msk).Description)
}

func TestRenderTopLastWeek(t *testing.T) {
	start := time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	msg := RenderTopLastWeek([]activity.PlayerHours{{Player: "Alice", Hours: 7}}, 10, &start, &end, msk)
	assert.Equal(t, "🕓 Топ 1 игроков за прошлую неделю", msg.Title)
	assert.Equal(t, "Неделя: 05.10 12:00 – 12.10 12:00", msg.Footer)

	empty := RenderTopLastWeek(nil, 10, nil, nil, msk)
	assert.Equal(t, "Нет данных за прошлую неделю.", empty.Description)
	assert.Empty(t, empty.Footer)
}

func TestRenderTopTotalTruncation(t *testing.T) {
	items := []activity.PlayerHours{{Player: "Alice", Hours: 40}, {Player: "Bob", Hours: 30}}
	assert.Equal(t, "Показаны только первые 2 игроков из 5.", RenderTopTotal(items, 5, 2).Footer)
	assert.Empty(t, RenderTopTotal(items, 2, 30).Footer)
	assert.Equal(t, "Нет данных.", RenderTopTotal(nil, 0, 30).Description)
}

func TestRenderFieldsStatus(t *testing.T) {
	asOf := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	msg := RenderFieldsStatus([]gameserver.FieldStatus{
		{ID: "3", Fruit: "WHEAT", Growth: 4, Spray: 0.5, Weeds: true, Plowed: true},
		{ID: "7", Fruit: "CANOLA", Growth: 7, Lime: true},
		{ID: "9", Fruit: "NONE"},
	}, asOf, msk)

	assert.Equal(t, PanelFieldsStatus, msg.Panel)
	assert.Equal(t, "Обновлено: 2026-10-14 12:00:00", msg.Footer)
	require.Len(t, msg.Fields, 3)
	assert.Equal(t, "#3 🌾 WHEAT | стадия: 4/7 | 💧 удобрение: 50% | 🌱 сорняки: ✅ | 🧂 известь: ❌ | 🔨 вспашка: ✅", msg.Fields[0].Value)
	assert.Contains(t, msg.Fields[1].Value, "🧺 Урожай готов")
	assert.Equal(t, "#9 🟫 Пустое | можно сеять", msg.Fields[2].Value)
	assert.Equal(t, "\u200b", msg.Fields[2].Name)

	assert.Equal(t, "Нет доступных полей.", RenderFieldsStatus(nil, asOf, msk).Description)
}

func TestRenderFieldsStatusTruncates(t *testing.T) {
	fields := make([]gameserver.FieldStatus, 30)
	for i := range fields {
		fields[i] = gameserver.FieldStatus{ID: fmt.Sprint(i + 1)}
	}
	msg := RenderFieldsStatus(fields, time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC), msk)
	assert.Len(t, msg.Fields, maxFieldRows)
	assert.Equal(t, "Показаны первые 25 полей из 30. Обновлено: 2026-10-14 12:00:00", msg.Footer)
}

func TestRenderVehicleMaintenance(t *testing.T) {
	asOf := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	report := gameserver.ClassifyVehicles([]gameserver.VehicleCondition{
		{Name: "Fendt 942", Damage: 60, Fuel: 120, FuelCapacity: 800, UsesFuel: true},
		{Name: "Krone BiG Pack", Dirt: 70, Damage: 6},
		{Name: "Claas Lexion", Dirt: 10, Fuel: 500, FuelCapacity: 1000, UsesFuel: true},
	})
	msg := RenderVehicleMaintenance(report, asOf, msk)

	assert.Equal(t, PanelVehicleMaintenance, msg.Panel)
	assert.Equal(t, "🚜 Обслуживание техники", msg.Title)
	assert.Equal(t, ""+
		"🛠️ **Повреждённая техника (низкое топливо + повреждение):**\n"+
		"• Fendt 942 — поврежд. 60%, топливо: 120\n\n"+
		"💩 **Сильно загрязнённая техника:**\n"+
		"• Krone BiG Pack — грязь: 70%, поврежд.: 6%\n\n"+
		"⚙️ **Остальная техника:**\n"+
		"• Claas Lexion — грязь: 10%, топливо: 500", msg.Description)

	empty := RenderVehicleMaintenance(gameserver.MaintenanceReport{}, asOf, msk)
	assert.Equal(t, "ℹ️ Нет техники для обслуживания", empty.Description)
}

func TestGroupThousands(t *testing.T) {
	cases := map[int]string{0: "0", 999: "999", 1000: "1 000", 1234567: "1 234 567", -45000: "-45 000"}
	for in, want := range cases {
		assert.Equal(t, want, groupThousands(in), "groupThousands(%d)", in)
	}
}
