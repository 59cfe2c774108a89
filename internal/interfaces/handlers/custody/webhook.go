package custody

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stocktochain-backend/internal/domain"
	"stocktochain-backend/internal/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SignatureHeader carries "t=<unix>,v1=<hex hmac>" computed over "<t>.<body>".
const SignatureHeader = "X-Custody-Signature"

const EventDepositReceived = "deposit.received"

const signatureTolerance = 300 * time.Second

// Receiver credits a deposit to the vehicle and records it in one transaction.
type Receiver interface {
	ReceiveDeposit(ctx context.Context, d *domain.Deposit, data []byte) (duplicate bool, err error)
}

type WebhookHandler struct {
	DB            *gorm.DB
	Receiver      Receiver
	WebhookSecret string
	Now           func() time.Time
}

type custodyEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		From   string        `json:"from"`
		Asset  string        `json:"asset"`
		Amount domain.Amount `json:"amount"`
		Data   string        `json:"data"`
	} `json:"data"`
}

// HandleWebhook POST /api/v1/custody/webhook
func (wh *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	sig := c.Get(SignatureHeader)

	if len(rawBody) == 0 {
		log.Warn().Msg("custody webhook received empty body")
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: empty body")
	}
	if err := verifySignature(rawBody, sig, wh.WebhookSecret, wh.now()); err != nil {
		log.Warn().Err(err).Bool("has_sig", sig != "").Bool("has_secret", wh.WebhookSecret != "").Msg("custody webhook signature verification failed")
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	var event custodyEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Warn().Err(err).Msg("custody webhook JSON parse failed")
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}
	if event.Type != EventDepositReceived || event.ID == "" {
		return c.Status(fiber.StatusOK).SendString("ok")
	}
	if !common.IsHexAddress(event.Data.From) {
		log.Warn().Str("event_id", event.ID).Str("from", event.Data.From).Msg("custody deposit has invalid sender")
		return c.Status(fiber.StatusOK).SendString("ok")
	}

	if err := wh.handleDeposit(c.UserContext(), event, rawBody); err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("custody deposit processing failed")
		return c.Status(fiber.StatusInternalServerError).SendString("Webhook Error: processing failed")
	}
	return c.Status(fiber.StatusOK).SendString("ok")
}

// handleDeposit routes the funds through the vehicle, which records the event id
// together with the credit. Domain rejections are recorded and acknowledged;
// internal failures persist nothing so the provider retries.
func (wh *WebhookHandler) handleDeposit(ctx context.Context, event custodyEvent, rawBody []byte) error {
	deposit := domain.Deposit{
		ProviderEventID: event.ID,
		FromAddress:     common.HexToAddress(event.Data.From).Hex(),
		Asset:           event.Data.Asset,
		Amount:          event.Data.Amount,
		CallData:        event.Data.Data,
		RawEvent:        datatypes.JSON(rawBody),
	}
	if deposit.Asset == "" {
		deposit.Asset = domain.NativeAsset
	}

	data, err := decodeCallData(event.Data.Data)
	if err != nil {
		log.Warn().Str("event_id", event.ID).Msg("custody deposit has invalid call data")
		return wh.reject(ctx, &deposit)
	}

	duplicate, err := wh.Receiver.ReceiveDeposit(ctx, &deposit, data)
	switch {
	case err == nil:
		if duplicate {
			log.Info().Str("event_id", event.ID).Msg("custody deposit already processed")
		}
		return nil
	case apperror.As(err) != nil && apperror.KindOf(err) != apperror.KindInternal:
		log.Warn().Str("event_id", event.ID).Str("code", apperror.As(err).Code).Msg("custody deposit rejected")
		return wh.reject(ctx, &deposit)
	default:
		return err
	}
}

// reject records a refused deposit so redeliveries are acknowledged without another attempt.
func (wh *WebhookHandler) reject(ctx context.Context, deposit *domain.Deposit) error {
	deposit.Status = domain.DepositRejected
	return wh.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(deposit).Error
}

func (wh *WebhookHandler) now() time.Time {
	if wh.Now != nil {
		return wh.Now()
	}
	return time.Now()
}

func decodeCallData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// Sign builds a SignatureHeader value for payload at ts.
func Sign(payload []byte, secret string, ts time.Time) string {
	t := strconv.FormatInt(ts.Unix(), 10)
	return "t=" + t + ",v1=" + computeSignature(t, payload, secret)
}

func computeSignature(timestamp string, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	return hex.EncodeToString(mac.Sum(nil))
}

func verifySignature(payload []byte, sigHeader, secret string, now time.Time) error {
	if sigHeader == "" || secret == "" {
		return errors.New("missing signature or secret")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return errors.New("invalid signature format")
	}

	expected := computeSignature(timestamp, payload, secret)
	for _, sig := range signatures {
		if !hmac.Equal([]byte(sig), []byte(expected)) {
			continue
		}
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return errors.New("invalid timestamp")
		}
		diff := now.Sub(time.Unix(ts, 0))
		if diff < 0 {
			diff = -diff
		}
		if diff > signatureTolerance {
			return errors.New("timestamp outside tolerance")
		}
		return nil
	}
	return errors.New("signature mismatch")
}
