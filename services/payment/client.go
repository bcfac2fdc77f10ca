// Package paymentsvc talks to the online payment gateway used to collect tuition.
package paymentsvc

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/tuition"
)

const paymentsPath = "/v1/payments"

type (
	createReq struct {
		MerchantID  string `json:"merchant_id"`
		OrderID     string `json:"order_id"`
		Amount      int64  `json:"amount"`
		Currency    string `json:"currency"`
		Description string `json:"description"`
		ReturnURL   string `json:"return_url"`
		Signature   string `json:"signature"`
	}

	statusRes struct {
		Ref    string `json:"payment_ref"`
		Status string `json:"status"`
	}

	apiError struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)

type Client struct {
	http       *resty.Client
	merchantID string
	secret     string
	returnURL  string
}

var _ tuition.PaymentProvider = (*Client)(nil)

func NewClient(conf core.PaymentConfig) *Client {
	hc := resty.New().
		SetBaseURL(conf.BaseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Merchant-Id", conf.MerchantID)
	return &Client{http: hc, merchantID: conf.MerchantID, secret: conf.Secret, returnURL: conf.ReturnURL}
}

// sign returns the hex HMAC-SHA256 of the pipe-joined parts.
func (c *Client) sign(parts ...string) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) CreatePayment(ctx context.Context, req tuition.PaymentRequest) (tuition.PaymentSession, error) {
	body := createReq{
		MerchantID:  c.merchantID,
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Currency:    "VND",
		Description: req.Description,
		ReturnURL:   c.returnURL,
		Signature:   c.sign(c.merchantID, req.OrderID, strconv.FormatInt(req.Amount, 10)),
	}

	var (
		out    tuition.PaymentSession
		apiErr apiError
	)
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post(paymentsPath)
	if err != nil {
		return tuition.PaymentSession{}, errors.Wrap(err, "calling payment gateway")
	}
	if res.StatusCode() != http.StatusOK && res.StatusCode() != http.StatusCreated {
		return tuition.PaymentSession{}, apiErr.err(res)
	}
	if out.Ref == "" {
		return tuition.PaymentSession{}, errors.New("payment gateway returned no payment reference")
	}
	return out, nil
}

func (c *Client) PaymentStatus(ctx context.Context, ref string) (string, error) {
	var (
		out    statusRes
		apiErr apiError
	)
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ref", ref).
		SetQueryParam("signature", c.sign(c.merchantID, ref)).
		SetResult(&out).
		SetError(&apiErr).
		Get(paymentsPath + "/{ref}")
	if err != nil {
		return "", errors.Wrap(err, "calling payment gateway")
	}
	if res.StatusCode() != http.StatusOK {
		return "", apiErr.err(res)
	}
	return normalizeStatus(out.Status)
}

func (e apiError) err(res *resty.Response) error {
	msg := e.Message
	if msg == "" {
		msg = res.Status()
	}
	return errors.Errorf("payment gateway error %d: %s", res.StatusCode(), msg)
}

func normalizeStatus(s string) (string, error) {
	switch strings.ToLower(s) {
	case "pending", "processing", "created":
		return tuition.PaymentPending, nil
	case "succeeded", "success", "paid":
		return tuition.PaymentSucceeded, nil
	case "failed", "cancelled", "canceled", "expired":
		return tuition.PaymentFailed, nil
	default:
		return "", errors.Errorf("unknown payment status %q", s)
	}
}
