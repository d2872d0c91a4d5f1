package advisor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lox/wayraweather/internal/analysis"
	"github.com/lox/wayraweather/internal/models"
)

const systemPrompt = `You are a concise outdoor-event weather assistant. Given a summary of a
reconciled forecast window, climatological probabilities and comfort scores,
write two or three sentences of practical advice for the event. Do not invent
numbers that are not in the summary. Mention missing data plainly.`

var _ analysis.Advisor = (*OpenAI)(nil)

// OpenAI writes event advice with a chat completion.
type OpenAI struct {
	client openai.Client
	model  openai.ChatModel
}

// New returns an advisor using apiKey. Extra options are passed to the
// client; requests are never retried.
func New(apiKey string, opts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

func (o *OpenAI) Advise(ctx context.Context, r *analysis.Report) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(Summary(r)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}

	advice := strings.TrimSpace(resp.Choices[0].Message.Content)
	if advice == "" {
		return "", errors.New("empty advice returned")
	}
	log.Printf("advisor: %d chars for %s on %s", len(advice), r.EventType, r.Date)
	return advice, nil
}

// Summary renders the parts of a report the model needs as plain text.
func Summary(r *analysis.Report) string {
	var b strings.Builder

	place := r.Location.Name
	if place == "" {
		place = fmt.Sprintf("%.3f, %.3f", r.Location.Latitude, r.Location.Longitude)
	}
	fmt.Fprintf(&b, "Event: %s at %s on %s\n", r.EventType, place, r.Date)

	fmt.Fprintf(&b, "Target day: temperature %s C, humidity %s %%, wind %s m/s, precipitation %s mm\n",
		format(r.Value(models.MetricTemperature)),
		format(r.Value(models.MetricHumidity)),
		format(r.Value(models.MetricWind)),
		format(r.Value(models.MetricPrecipitation)))

	fmt.Fprintf(&b, "Comfort: %s (%d)\n", r.Comfort.Level, r.Comfort.Score)
	fmt.Fprintf(&b, "Eco impact: %s, rain %s, air quality %s\n", r.Eco.Level, r.Eco.Precipitation, r.Eco.AQICategory)

	for _, m := range models.Metrics {
		fmt.Fprintf(&b, "Trend %s: %s\n", m, r.Trends[m])
	}

	if len(r.BestDays) > 0 {
		days := make([]string, len(r.BestDays))
		for i, d := range r.BestDays {
			days[i] = fmt.Sprintf("%s (%.2f)", models.DateKey(d.Date), d.Score)
		}
		fmt.Fprintf(&b, "Best days: %s\n", strings.Join(days, ", "))
	}

	if p := r.Probabilities; p != nil {
		fmt.Fprintf(&b, "Historical probabilities: hot %s, cold %s, windy %s, humid %s, uncomfortable %s\n",
			percent(p.VeryHot), percent(p.VeryCold), percent(p.VeryWindy), percent(p.VeryHumid), percent(p.VeryUncomfortable))
	} else {
		b.WriteString("Historical probabilities: unavailable\n")
	}
	return b.String()
}

func format(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

func percent(m models.ProbabilityMetric) string {
	if m.Probability == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%% (n=%d)", *m.Probability*100, m.SampleSize)
}
