package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// OpenAIClient talks to any OpenAI compatible API (chat completions +
// image generations)
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	chatModel  string
	imageModel string
	httpClient *http.Client
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAI builds a client from the configuration. The base URL must
// include the /v1 prefix
func NewOpenAI() *OpenAIClient {
	return &OpenAIClient{
		baseURL:    strings.TrimRight(viper.GetString("openai.base_url"), "/"),
		apiKey:     viper.GetString("openai.api_key"),
		chatModel:  viper.GetString("openai.chat_model"),
		imageModel: viper.GetString("openai.image_model"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAIClient) Chat(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model:       c.chatModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", body, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Status: http.StatusOK, Message: "empty chat completion"}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &UpstreamError{Status: http.StatusOK, Message: "empty chat completion"}
	}

	return text, nil
}

func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	body := imageRequest{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	}

	var resp imageResponse
	if err := c.post(ctx, "/images/generations", body, &resp); err != nil {
		return "", err
	}

	if len(resp.Data) == 0 {
		return "", &UpstreamError{Status: http.StatusOK, Message: "image generation returned no result"}
	}

	if resp.Data[0].URL != "" {
		return resp.Data[0].URL, nil
	}

	if resp.Data[0].B64JSON != "" {
		return "data:image/png;base64," + resp.Data[0].B64JSON, nil
	}

	return "", &UpstreamError{Status: http.StatusOK, Message: "image generation returned no result"}
}

func (c *OpenAIClient) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ai request failed, %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		json.NewDecoder(resp.Body).Decode(&errResp)

		return &UpstreamError{Status: resp.StatusCode, Message: errResp.Error.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode ai response, %w", err)
	}

	return nil
}

// IsUpstream reports whether err originated from the generative API
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
