package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"doulaops-backend/config"

	"github.com/sirupsen/logrus"
)

// EnvelopeRequest carries everything an e-signature provider needs to send a
// contract out for signing.
type EnvelopeRequest struct {
	ContractID     uint
	ClientName     string
	ClientEmail    string
	ServicePackage string
	TotalFee       float64
}

type Envelope struct {
	ID     string
	Status string
}

// ESignClient abstracts the signing provider. SignNow is the primary,
// DocuSign the alternate; which one runs is an env decision made at startup.
type ESignClient interface {
	Provider() string
	SendEnvelope(ctx context.Context, req EnvelopeRequest) (*Envelope, error)
	EnvelopeStatus(ctx context.Context, envelopeID string) (string, error)
}

// NewESignFromEnv picks the provider from ESIGN_PROVIDER ("docusign" or
// anything else meaning SignNow) and builds it from its env credentials.
func NewESignFromEnv(httpClient *http.Client) ESignClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if os.Getenv("ESIGN_PROVIDER") == "docusign" {
		return &DocuSignClient{
			BaseURL:    envDefault("DOCUSIGN_BASE_URL", "https://demo.docusign.net/restapi"),
			AccountID:  os.Getenv("DOCUSIGN_ACCOUNT_ID"),
			TemplateID: os.Getenv("DOCUSIGN_TEMPLATE_ID"),
			Token:      os.Getenv("DOCUSIGN_TOKEN"),
			HTTP:       httpClient,
			Log:        config.GetLogger(),
		}
	}
	return &SignNowClient{
		BaseURL:    envDefault("SIGNNOW_BASE_URL", "https://api.signnow.com"),
		TemplateID: os.Getenv("SIGNNOW_TEMPLATE_ID"),
		Token:      os.Getenv("SIGNNOW_TOKEN"),
		HTTP:       httpClient,
		Log:        config.GetLogger(),
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ---- SignNow

type SignNowClient struct {
	BaseURL    string
	TemplateID string
	Token      string
	HTTP       *http.Client
	Log        *logrus.Logger
}

func (s *SignNowClient) Provider() string { return "signnow" }

// SendEnvelope copies the contract template into a fresh document and invites
// the client to sign it.
func (s *SignNowClient) SendEnvelope(ctx context.Context, req EnvelopeRequest) (*Envelope, error) {
	docName := fmt.Sprintf("Doula Services Agreement #%d - %s", req.ContractID, req.ClientName)
	var copied struct {
		ID string `json:"id"`
	}
	err := doJSON(ctx, s.HTTP, http.MethodPost,
		s.BaseURL+"/template/"+s.TemplateID+"/copy",
		"Bearer "+s.Token,
		map[string]any{"document_name": docName},
		&copied)
	if err != nil {
		return nil, fmt.Errorf("signnow copy template: %w", err)
	}

	invite := map[string]any{
		"to": []map[string]any{{
			"email": req.ClientEmail,
			"role":  "Client",
			"order": 1,
		}},
		"subject": docName,
		"message": fmt.Sprintf("Please review and sign your %s agreement.", req.ServicePackage),
	}
	err = doJSON(ctx, s.HTTP, http.MethodPost,
		s.BaseURL+"/document/"+copied.ID+"/invite",
		"Bearer "+s.Token, invite, nil)
	if err != nil {
		return nil, fmt.Errorf("signnow invite: %w", err)
	}

	s.Log.WithFields(logrus.Fields{"provider": "signnow", "document": copied.ID, "contract": req.ContractID}).Info("envelope sent")
	return &Envelope{ID: copied.ID, Status: "sent"}, nil
}

func (s *SignNowClient) EnvelopeStatus(ctx context.Context, envelopeID string) (string, error) {
	var doc struct {
		Status string `json:"status"`
	}
	err := doJSON(ctx, s.HTTP, http.MethodGet,
		s.BaseURL+"/document/"+envelopeID, "Bearer "+s.Token, nil, &doc)
	if err != nil {
		return "", fmt.Errorf("signnow document status: %w", err)
	}
	return doc.Status, nil
}

// ---- DocuSign

type DocuSignClient struct {
	BaseURL    string
	AccountID  string
	TemplateID string
	Token      string
	HTTP       *http.Client
	Log        *logrus.Logger
}

func (d *DocuSignClient) Provider() string { return "docusign" }

func (d *DocuSignClient) SendEnvelope(ctx context.Context, req EnvelopeRequest) (*Envelope, error) {
	body := map[string]any{
		"templateId":   d.TemplateID,
		"status":       "sent",
		"emailSubject": fmt.Sprintf("Doula Services Agreement #%d", req.ContractID),
		"templateRoles": []map[string]any{{
			"email":    req.ClientEmail,
			"name":     req.ClientName,
			"roleName": "Client",
		}},
	}
	var created struct {
		EnvelopeID string `json:"envelopeId"`
		Status     string `json:"status"`
	}
	err := doJSON(ctx, d.HTTP, http.MethodPost,
		d.BaseURL+"/v2.1/accounts/"+d.AccountID+"/envelopes",
		"Bearer "+d.Token, body, &created)
	if err != nil {
		return nil, fmt.Errorf("docusign create envelope: %w", err)
	}

	d.Log.WithFields(logrus.Fields{"provider": "docusign", "envelope": created.EnvelopeID, "contract": req.ContractID}).Info("envelope sent")
	return &Envelope{ID: created.EnvelopeID, Status: created.Status}, nil
}

func (d *DocuSignClient) EnvelopeStatus(ctx context.Context, envelopeID string) (string, error) {
	var env struct {
		Status string `json:"status"`
	}
	err := doJSON(ctx, d.HTTP, http.MethodGet,
		d.BaseURL+"/v2.1/accounts/"+d.AccountID+"/envelopes/"+envelopeID,
		"Bearer "+d.Token, nil, &env)
	if err != nil {
		return "", fmt.Errorf("docusign envelope status: %w", err)
	}
	return env.Status, nil
}

// doJSON performs one JSON round trip. Non-2xx responses become errors
// carrying the response body (truncated).
func doJSON(ctx context.Context, client *http.Client, method, url, auth string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(raw)
		if len(msg) > 256 {
			msg = msg[:256]
		}
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, msg)
	}
	if out != nil && len(raw) > 0 {
		return json.Unmarshal(raw, out)
	}
	return nil
}
