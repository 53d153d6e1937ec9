package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"laptopshop-be/internal/config"
	"laptopshop-be/internal/logger"

	"go.uber.org/zap"
)

const (
	vnpVersion     = "2.1.0"
	vnpCommand     = "pay"
	vnpCurrency    = "VND"
	vnpLocale      = "vn"
	responseCodeOK = "00"
)

type vnpayGateway struct {
	tmnCode    string
	hashSecret string
	gatewayURL string
	returnURL  string
	location   *time.Location
}

func NewVNPayGateway(cfg *config.Config) Gateway {
	if cfg.VNPayHashSecret == "" {
		logger.L().Warn("VNPay hash secret is empty")
	}

	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		logger.L().Error("failed to load VN location, defaulting to UTC", zap.Error(err))
		loc = time.UTC
	}

	return &vnpayGateway{
		tmnCode:    cfg.VNPayTmnCode,
		hashSecret: cfg.VNPayHashSecret,
		gatewayURL: cfg.VNPayGatewayURL,
		returnURL:  cfg.VNPayReturnURL,
		location:   loc,
	}
}

// CreatePayment builds the signed redirect URL for the gateway. The current
// deployment treats creation as settled immediately; the callback path
// still performs the full verification so a real async gateway drops in.
func (g *vnpayGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_number", req.OrderNumber),
		zap.Int64("amount", req.Amount),
	)

	now := time.Now().In(g.location)

	params := url.Values{}
	params.Set("vnp_Version", vnpVersion)
	params.Set("vnp_Command", vnpCommand)
	params.Set("vnp_TmnCode", g.tmnCode)
	// VNPay expects the amount multiplied by 100.
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_CurrCode", vnpCurrency)
	params.Set("vnp_TxnRef", req.OrderNumber)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", vnpLocale)
	params.Set("vnp_ReturnUrl", g.returnURL)
	params.Set("vnp_IpAddr", req.ClientIP)
	params.Set("vnp_CreateDate", now.Format("20060102150405"))
	params.Set("vnp_ExpireDate", now.Add(15*time.Minute).Format("20060102150405"))

	signed := signParams(params, g.hashSecret)
	paymentURL := g.gatewayURL + "?" + signed

	log.Info("payment request created")

	return &CreatePaymentResponse{
		Success:    true,
		PaymentURL: paymentURL,
	}, nil
}

// VerifyCallback recomputes the secure hash over the sorted parameter set
// and compares it against the one the gateway sent. No field of the result
// is populated until the signature matches.
func (g *vnpayGateway) VerifyCallback(params url.Values) (*CallbackResult, error) {
	received := params.Get("vnp_SecureHash")
	if received == "" {
		return nil, ErrVerificationFailed
	}

	verifiable := url.Values{}
	for key, values := range params {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		if len(values) > 0 {
			verifiable.Set(key, values[0])
		}
	}

	expected := computeSecureHash(verifiable, g.hashSecret)
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		logger.L().Warn("callback signature mismatch",
			zap.String("txn_ref", params.Get("vnp_TxnRef")),
		)
		return nil, ErrVerificationFailed
	}

	amount, _ := strconv.ParseInt(params.Get("vnp_Amount"), 10, 64)
	code := params.Get("vnp_ResponseCode")

	return &CallbackResult{
		OrderNumber:   params.Get("vnp_TxnRef"),
		TransactionID: params.Get("vnp_TransactionNo"),
		Amount:        amount / 100,
		Success:       code == responseCodeOK,
		ResponseCode:  code,
	}, nil
}

// signParams returns the sorted, encoded query string with the secure hash
// appended.
func signParams(params url.Values, secret string) string {
	encoded := encodeSorted(params)
	hash := hmacSHA512(secret, encoded)
	return encoded + "&vnp_SecureHash=" + hash
}

func computeSecureHash(params url.Values, secret string) string {
	return hmacSHA512(secret, encodeSorted(params))
}

// encodeSorted encodes params in strict key order, which is what the
// provider hashes on its side.
func encodeSorted(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}

func hmacSHA512(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
