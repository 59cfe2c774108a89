package vehicle

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"stocktochain-backend/internal/domain"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
	"gorm.io/datatypes"
)

// emit records a notification in the current transaction. It is published only after commit.
func (c *call) emit(name string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	c.state.NotificationSeq++
	n := domain.Notification{
		Seq:       c.state.NotificationSeq,
		Name:      name,
		Actor:     c.actor.Hex(),
		Payload:   datatypes.JSON(body),
		CreatedAt: c.now,
	}
	n.Digest = Digest(n.Seq, n.Name, body)
	if err := c.tx.Create(&n).Error; err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	c.events = append(c.events, n)
	return nil
}

// Digest is the Keccak-256 of the big-endian sequence number, the name and the JSON payload.
func Digest(seq uint64, name string, payload []byte) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	h := sha3.NewLegacyKeccak256()
	h.Write(b[:])
	h.Write([]byte(name))
	h.Write(payload)
	return hexutil.Encode(h.Sum(nil))
}
