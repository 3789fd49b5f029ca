package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/otherjamesbrown/conversa/pkg/buildinfo"
	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

const (
	sentimentInstructions = `You classify the sentiment of one WhatsApp message written in Brazilian Portuguese.
Answer with the label that best fits the message: positive, negative or neutral.
Short reactions, media placeholders and greetings without emotional content are neutral.`

	spellingInstructions = `You proofread one informal WhatsApp message written in Brazilian Portuguese.
List every distinct word that is misspelled according to standard Portuguese orthography.
Ignore names, laughter (kkkk, haha, rsrs), emoji, links and common chat abbreviations (vc, pq, tb, blz).
Return an empty list when nothing is misspelled.`
)

type sentimentResponse struct {
	Label string `json:"label" jsonschema:"enum=positive,enum=negative,enum=neutral"`
}

type spellingResponse struct {
	Misspelled []string `json:"misspelled"`
}

var (
	sentimentSchema = generateSchema[sentimentResponse]()
	spellingSchema  = generateSchema[spellingResponse]()
)

// OpenAIOptions configures the OpenAI classifier.
type OpenAIOptions struct {
	APIKey  string
	Model   string
	BaseURL string

	// MaxOutputTokens bounds each response.
	MaxOutputTokens int64
}

// OpenAI classifies messages with the OpenAI Responses API using strict
// JSON schema output. Every message is a single request; failures are not
// retried.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

// NewOpenAI creates an OpenAI classifier. It fails with ErrNotConfigured
// when no API key is given.
func NewOpenAI(opts OpenAIOptions) (*OpenAI, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is not set (run 'conversa auth set-key' or export OPENAI_API_KEY)", cverrors.ErrNotConfigured)
	}
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 200
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", buildinfo.UserAgent()),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	return &OpenAI{client: &client, model: opts.Model, maxTokens: opts.MaxOutputTokens}, nil
}

// Name implements Classifier.
func (o *OpenAI) Name() string {
	return string(KindOpenAI) + ":" + o.model
}

// Sentiment implements SentimentClassifier.
func (o *OpenAI) Sentiment(ctx context.Context, text string) (Label, error) {
	var out sentimentResponse
	if err := o.call(ctx, "MessageSentiment", sentimentSchema, sentimentInstructions, text, &out); err != nil {
		return "", classificationError("sentiment", err)
	}
	return ParseLabel(out.Label), nil
}

// Misspellings implements SpellChecker.
func (o *OpenAI) Misspellings(ctx context.Context, text string) (int, error) {
	var out spellingResponse
	if err := o.call(ctx, "MessageSpelling", spellingSchema, spellingInstructions, text, &out); err != nil {
		return 0, classificationError("spelling", err)
	}
	distinct := make(map[string]struct{}, len(out.Misspelled))
	for _, w := range out.Misspelled {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			distinct[w] = struct{}{}
		}
	}
	return len(distinct), nil
}

func (o *OpenAI) call(ctx context.Context, name string, schema map[string]interface{}, instructions, text string, v any) error {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:   name,
			Schema: schema,
			Strict: openai.Bool(true),
			Type:   "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(o.maxTokens),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return err
	}
	return decodeModelJSON(resp.OutputText(), v)
}

// decodeModelJSON unmarshals JSON from a model response, tolerating text
// around the first top-level object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return errors.New("no JSON object found in model output")
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("unmarshal model output: %w", err)
	}
	return nil
}

func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	enforceStrict(m)
	return m
}

// enforceStrict marks every object closed with all properties required,
// as strict structured outputs demand.
func enforceStrict(schema map[string]interface{}) {
	props, ok := schema["properties"].(map[string]interface{})
	if schema["type"] == "object" {
		schema["additionalProperties"] = false
		if ok && len(props) > 0 {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			schema["required"] = required
		}
	}
	for _, prop := range props {
		if p, ok := prop.(map[string]interface{}); ok {
			enforceStrict(p)
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		enforceStrict(items)
	}
}
