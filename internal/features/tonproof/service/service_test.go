package service

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/features/tonproof/models"
	"kc-mini-app-backend/internal/features/tonproof/repository/memory"
)

const domain = "mini-app.example.com"

type linker struct{ linked map[int64]string }

func (l *linker) ConnectWalletKit(_ context.Context, userID int64, addr string) error {
	l.linked[userID] = addr
	return nil
}

type fixture struct {
	svc    *Service
	linker *linker
	now    time.Time
	pub    ed25519.PublicKey
	priv   ed25519.PrivateKey
	hash   []byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("wallet"))

	f := &fixture{
		linker: &linker{linked: map[int64]string{}},
		now:    time.Unix(1_700_000_000, 0),
		pub:    pub,
		priv:   priv,
		hash:   hash[:],
	}
	clock := func() time.Time { return f.now }
	f.svc = NewService(memory.NewRepository(clock), f.linker, Config{Domain: domain, TTL: 15 * time.Minute}, clock)
	return f
}

func (f *fixture) request(payload string) *models.VerifyRequest {
	proof := models.Proof{
		Timestamp: f.now.Unix(),
		Domain:    models.Domain{LengthBytes: uint32(len(domain)), Value: domain},
		Payload:   payload,
	}
	addr := address.NewAddress(0, 0, f.hash)
	proof.Signature = base64.StdEncoding.EncodeToString(ed25519.Sign(f.priv, SignedMessage(addr, proof)))

	return &models.VerifyRequest{
		Address:   fmt.Sprintf("0:%x", f.hash),
		Network:   "-239",
		PublicKey: hex.EncodeToString(f.pub),
		Proof:     proof,
	}
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.GeneratePayload(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, p.Payload, 32)

	resp, err := f.svc.Verify(ctx, 1, f.request(p.Payload))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, address.NewAddress(0, 0, f.hash).String(), resp.Address)
	assert.Equal(t, resp.Address, f.linker.linked[1])

	status, err := f.svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.True(t, status.Verified)

	// payloads are single use
	_, err = f.svc.Verify(ctx, 1, f.request(p.Payload))
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestVerify_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *models.VerifyRequest)
	}{
		{"foreign domain", func(r *models.VerifyRequest) { r.Proof.Domain.Value = "evil.example.co" }},
		{"tampered signature", func(r *models.VerifyRequest) { r.Proof.Signature = base64.StdEncoding.EncodeToString(make([]byte, ed25519.SignatureSize)) }},
		{"wrong key", func(r *models.VerifyRequest) {
			other, _, _ := ed25519.GenerateKey(nil)
			r.PublicKey = hex.EncodeToString(other)
		}},
		{"old proof", func(r *models.VerifyRequest) { r.Proof.Timestamp -= 3600 }},
		{"bad address", func(r *models.VerifyRequest) { r.Address = "nope" }},
		{"unknown payload", func(r *models.VerifyRequest) { r.Proof.Payload = "deadbeef" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.svc.GeneratePayload(ctx, 2)
			require.NoError(t, err)

			req := f.request(p.Payload)
			tt.mutate(req)

			_, err = f.svc.Verify(ctx, 2, req)
			assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
		})
	}

	assert.Empty(t, f.linker.linked)
}

func TestGeneratePayload_Expires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.GeneratePayload(ctx, 3)
	require.NoError(t, err)
	req := f.request(p.Payload)

	f.now = f.now.Add(16 * time.Minute)
	_, err = f.svc.Verify(ctx, 3, req)
	assert.Error(t, err)
}
