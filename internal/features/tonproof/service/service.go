package service

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
	"kc-mini-app-backend/internal/features/tonproof/models"
	"kc-mini-app-backend/internal/features/tonproof/repository"
	"kc-mini-app-backend/internal/platform/ton"
)

const (
	proofPrefix   = "ton-proof-item-v2/"
	connectPrefix = "ton-connect"
)

// WalletLinker records a verified TON Connect wallet on the user.
type WalletLinker interface {
	ConnectWalletKit(ctx context.Context, userID int64, address string) error
}

type Config struct {
	// Domain expected in the proof; empty accepts any domain.
	Domain string
	// TTL bounds both the payload lifetime and the proof age.
	TTL time.Duration
}

type Service struct {
	repo    repository.Repository
	wallets WalletLinker
	cfg     Config
	now     func() time.Time
}

func NewService(repo repository.Repository, wallets WalletLinker, cfg Config, now func() time.Time) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, wallets: wallets, cfg: cfg, now: now}
}

// GeneratePayload issues a one-time payload for the wallet to sign.
func (s *Service) GeneratePayload(ctx context.Context, userID int64) (*models.PayloadResponse, error) {
	payload := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.repo.SavePayload(ctx, userID, payload, s.cfg.TTL); err != nil {
		return nil, errors.NewCacheError("save ton proof payload", err)
	}
	return &models.PayloadResponse{Payload: payload, ExpiresAt: s.now().Add(s.cfg.TTL)}, nil
}

// Verify checks a ton_proof signed by the wallet and links the wallet to the
// user. The payload is consumed even when verification fails.
func (s *Service) Verify(ctx context.Context, userID int64, req *models.VerifyRequest) (*models.VerifyResponse, error) {
	addr, err := ton.ParseAddress(req.Address)
	if err != nil {
		return nil, errors.NewValidationError("address", err.Error())
	}
	if s.cfg.Domain != "" && req.Proof.Domain.Value != s.cfg.Domain {
		return nil, errors.NewValidationError("domain", "unexpected domain")
	}
	if int(req.Proof.Domain.LengthBytes) != len(req.Proof.Domain.Value) {
		return nil, errors.NewValidationError("domain", "length mismatch")
	}

	signedAt := time.Unix(req.Proof.Timestamp, 0)
	now := s.now()
	if now.Sub(signedAt) > s.cfg.TTL || signedAt.Sub(now) > time.Minute {
		return nil, errors.NewValidationError("timestamp", "proof expired")
	}

	ok, err := s.repo.TakePayload(ctx, userID, req.Proof.Payload)
	if err != nil {
		return nil, errors.NewCacheError("take ton proof payload", err)
	}
	if !ok {
		return nil, errors.NewValidationError("payload", "unknown or expired payload")
	}

	if req.Proof.StateInit != "" {
		if err := checkStateInit(addr, req.Proof.StateInit); err != nil {
			return nil, errors.NewValidationError("state_init", err.Error())
		}
	}
	if err := verifySignature(addr, req); err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Str("address", req.Address).Msg("TON proof rejected")
		return nil, errors.NewValidationError("signature", err.Error())
	}

	friendly := addr.String()
	if err := s.repo.SaveProof(ctx, &models.Record{
		UserID:     userID,
		Address:    friendly,
		Network:    req.Network,
		VerifiedAt: now,
	}); err != nil {
		return nil, errors.NewCacheError("save ton proof", err)
	}
	if err := s.wallets.ConnectWalletKit(ctx, userID, friendly); err != nil {
		return nil, err
	}

	logger.Info().Int64("user_id", userID).Str("address", friendly).Msg("TON Connect wallet verified")
	return &models.VerifyResponse{Success: true, Address: friendly}, nil
}

func (s *Service) Status(ctx context.Context, userID int64) (*models.StatusResponse, error) {
	record, err := s.repo.GetProof(ctx, userID)
	if err != nil {
		return nil, errors.NewCacheError("get ton proof", err)
	}
	return &models.StatusResponse{Verified: record != nil, Record: record}, nil
}

// checkStateInit makes sure the supplied state init hashes to the address.
func checkStateInit(addr *address.Address, stateInit string) error {
	boc, err := base64.StdEncoding.DecodeString(stateInit)
	if err != nil {
		return stderrors.New("state init is not base64")
	}
	c, err := cell.FromBOC(boc)
	if err != nil {
		return err
	}
	if !bytes.Equal(c.Hash(), addr.Data()) {
		return stderrors.New("state init does not match address")
	}
	return nil
}

// SignedMessage builds the digest a TON Connect wallet signs for ton_proof.
func SignedMessage(addr *address.Address, proof models.Proof) []byte {
	var msg bytes.Buffer
	msg.WriteString(proofPrefix)

	var wc [4]byte
	binary.BigEndian.PutUint32(wc[:], uint32(addr.Workchain()))
	msg.Write(wc[:])
	msg.Write(addr.Data())

	var dl [4]byte
	binary.LittleEndian.PutUint32(dl[:], proof.Domain.LengthBytes)
	msg.Write(dl[:])
	msg.WriteString(proof.Domain.Value)

	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(proof.Timestamp))
	msg.Write(ts[:])
	msg.WriteString(proof.Payload)

	inner := sha256.Sum256(msg.Bytes())

	full := make([]byte, 0, 2+len(connectPrefix)+len(inner))
	full = append(full, 0xff, 0xff)
	full = append(full, connectPrefix...)
	full = append(full, inner[:]...)

	digest := sha256.Sum256(full)
	return digest[:]
}

func verifySignature(addr *address.Address, req *models.VerifyRequest) error {
	pubKey, err := hex.DecodeString(strings.TrimPrefix(req.PublicKey, "0x"))
	if err != nil || len(pubKey) != ed25519.PublicKeySize {
		return stderrors.New("invalid public key")
	}

	signature, err := base64.StdEncoding.DecodeString(req.Proof.Signature)
	if err != nil || len(signature) != ed25519.SignatureSize {
		return stderrors.New("invalid signature encoding")
	}

	if !ed25519.Verify(pubKey, SignedMessage(addr, req.Proof), signature) {
		return stderrors.New("signature verification failed")
	}
	return nil
}
