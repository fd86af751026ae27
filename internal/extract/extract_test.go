package extract

// Тесты адаптера извлечения (internal/extract).
//
// Проверяем:
//  - санитизацию: срез разметки, схлопывание переводов строк, предел длины;
//  - ответ null -> (nil, nil), нерелевантный документ — не ошибка;
//  - нормализацию выхода: суффикс locality у pins, отсев пустых нотификаций;
//  - ошибочные статусы сервиса.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

func TestSanitize(t *testing.T) {
	raw := "<p>Спиране на водата</p>\n\n<b>ул. Оборище</b>\r\n от 08:00   до 18:00 &amp; след това"
	got := Sanitize(raw, 0)
	require.Equal(t, "Спиране на водата ул. Оборище от 08:00 до 18:00 & след това", got)
}

func TestSanitize_Cap(t *testing.T) {
	// предел измеряется в рунах, не в байтах
	got := Sanitize("абвгдежзик", 5)
	require.Equal(t, "абвгд", got)

	require.Equal(t, "", Sanitize("<div></div>", 100))
}

func newDoc() *models.SourceDocument {
	return &models.SourceDocument{
		ID:       "src-1",
		Title:    "Планирано спиране",
		RawText:  "Спиране на водоподаването на ул. Раковски 100",
		Locality: "София",
	}
}

func TestSplit_Null(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `null`)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "", 8000)

	items, err := client.Split(context.Background(), newDoc())
	require.NoError(t, err)
	require.Nil(t, items)
}

func TestSplit_NormalizesOutput(t *testing.T) {
	var gotReq splitRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `[
			{"responsible_entity":" Софийска вода ",
			 "text":"Спиране на водата на ул. Раковски 100",
			 "markdown_text":"**Спиране** на водата",
			 "pins":[{"address":"ул. Раковски 100","timespans":[{"start":"01.06.2025 08:00","end":"01.06.2025 18:00"}]},
			         {"address":"  "}],
			 "streets":[{"street":"ул. Оборище","from":"ул. Кракра","to":"ул. Шипка"},
			            {"street":"","from":"x","to":"y"}]},
			{"text":"   "}
		]`)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "secret", 8000)

	items, err := client.Split(context.Background(), newDoc())
	require.NoError(t, err)

	// вторая нотификация пуста и отброшена
	require.Len(t, items, 1)

	n := items[0]
	require.Equal(t, "Софийска вода", n.ResponsibleEntity)

	// pin без адреса отброшен; остальным добавлен суффикс locality
	require.Len(t, n.Pins, 1)
	require.Equal(t, "ул. Раковски 100, София", n.Pins[0].Address)
	require.Len(t, n.Pins[0].Timespans, 1)

	// street без имени улицы отброшен
	require.Len(t, n.Streets, 1)
	require.Equal(t, "ул. Оборище", n.Streets[0].Street)

	// запрос ушёл с санитизированным текстом и locality
	require.Equal(t, "София", gotReq.Locality)
	require.Contains(t, gotReq.Text, "Планирано спиране")
	require.NotContains(t, gotReq.Text, "\n")
}

func TestSplit_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "", 8000)

	_, err := client.Split(context.Background(), newDoc())
	require.Error(t, err)
}

func TestSplit_EmptyDocument(t *testing.T) {
	client := NewClient(http.DefaultClient, "http://127.0.0.1:0", "", 8000)

	doc := &models.SourceDocument{ID: "src-2", Title: "", RawText: "<div></div>"}
	_, err := client.Split(context.Background(), doc)
	require.Error(t, err)
}

func TestEnsureLocality(t *testing.T) {
	require.Equal(t, "ул. Шипка 5, София", ensureLocality("ул. Шипка 5", "София"))
	require.Equal(t, "ул. Шипка 5, София", ensureLocality("ул. Шипка 5, София", "София"))
	require.Equal(t, "", ensureLocality("", "София"))
}
