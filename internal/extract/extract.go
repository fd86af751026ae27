// extract — адаптер внешнего AI-сервиса извлечения: разбивает сырое
// объявление на атомарные нотификации и достаёт локации/интервалы/виновника.
// Сам промпт и модель — чёрный ящик за типизированным запросом/ответом;
// адаптер отвечает за санитизацию входа и валидацию/нормализацию выхода.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

// Notification — одна атомарная нотификация, извлечённая из документа.
type Notification struct {
	ResponsibleEntity   string             `json:"responsible_entity"`
	Categories          []string           `json:"categories"`
	Text                string             `json:"text"`
	MarkdownText        string             `json:"markdown_text"`
	Pins                []ExtractedPin     `json:"pins"`
	Streets             []ExtractedStreet  `json:"streets"`
	CadastralProperties []string           `json:"cadastral_properties"`
	BusStops            []string           `json:"bus_stops"`
}

// ExtractedPin — точечная локация с интервалами.
type ExtractedPin struct {
	Address   string            `json:"address"`
	Timespans []models.Timespan `json:"timespans"`
}

// ExtractedStreet — уличный участок с интервалами. Структурированные
// источники присылают концы уже с координатами; тогда геокодирование
// участка не требуется.
type ExtractedStreet struct {
	Street     string            `json:"street"`
	From       string            `json:"from"`
	To         string            `json:"to"`
	FromCoords *models.LatLng    `json:"from_coords,omitempty"`
	ToCoords   *models.LatLng    `json:"to_coords,omitempty"`
	Timespans  []models.Timespan `json:"timespans"`
}

type splitRequest struct {
	Text     string `json:"text"`
	Locality string `json:"locality"`
}

// Client — HTTP-клиент сервиса извлечения.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	maxTextRunes int
	endpoint     string // подменяется в тестах
}

// NewClient создаёт клиента извлечения.
func NewClient(httpClient *http.Client, endpoint, apiKey string, maxTextRunes int) *Client {
	return &Client{
		httpClient:   httpClient,
		apiKey:       apiKey,
		maxTextRunes: maxTextRunes,
		endpoint:     endpoint,
	}
}

// Split отправляет санитизированный текст документа на извлечение.
// Возвращает (nil, nil), когда сервис счёл документ нерелевантным (ответ null).
// Выход валидируется и нормализуется; нотификации без текста отбрасываются.
func (c *Client) Split(ctx context.Context, doc *models.SourceDocument) ([]Notification, error) {
	const op = "extract/extract/Split"

	text := Sanitize(doc.Title+"\n"+doc.RawText, c.maxTextRunes)
	if text == "" {
		return nil, fmt.Errorf("%s: document %s has no text after sanitizing", op, doc.ID)
	}

	payload, err := json.Marshal(splitRequest{Text: text, Locality: doc.Locality})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: extraction service returned status %d", op, resp.StatusCode)
	}

	// null — документ нерелевантен: валидный ответ, не ошибка.
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}

	var items []Notification
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: unmarshal notifications: %w", op, err)
	}

	out := make([]Notification, 0, len(items))
	for _, item := range items {
		n := normalize(item, doc.Locality)
		if n.Text == "" {
			continue
		}

		out = append(out, n)
	}

	return out, nil
}

// normalize приводит выход сервиса к доменным инвариантам:
//   - текстовые поля обрезаются;
//   - адрес каждого pin получает суффикс ", <locality>", если его нет;
//   - pins/streets без адреса/имени улицы отбрасываются.
func normalize(n Notification, locality string) Notification {
	n.Text = strings.TrimSpace(n.Text)
	n.MarkdownText = strings.TrimSpace(n.MarkdownText)
	n.ResponsibleEntity = strings.TrimSpace(n.ResponsibleEntity)

	pins := n.Pins[:0]
	for _, pin := range n.Pins {
		pin.Address = ensureLocality(strings.TrimSpace(pin.Address), locality)
		if pin.Address == "" {
			continue
		}

		pins = append(pins, pin)
	}
	n.Pins = pins

	streets := n.Streets[:0]
	for _, street := range n.Streets {
		street.Street = strings.TrimSpace(street.Street)
		street.From = strings.TrimSpace(street.From)
		street.To = strings.TrimSpace(street.To)
		if street.Street == "" {
			continue
		}

		streets = append(streets, street)
	}
	n.Streets = streets

	return n
}

// ensureLocality добавляет суффикс населённого пункта, когда его ещё нет.
func ensureLocality(addr, locality string) string {
	if addr == "" || locality == "" {
		return addr
	}

	if strings.Contains(strings.ToLower(addr), strings.ToLower(locality)) {
		return addr
	}

	return addr + ", " + locality
}
