package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/storage/compression"
	"github.com/ammcore/ammd/internal/storage/database"
)

// Key layout:
//
//	acct/<asset>/<account> -> balanceRecord
//	pool                   -> poolRecord
//	price                  -> priceRecord
var (
	keyPool  = []byte("pool")
	keyPrice = []byte("price")
)

type balanceRecord struct {
	Value uint64 `codec:"v"`
}

type poolRecord struct {
	BaseReserve     uint64 `codec:"b"`
	TokenReserve    uint64 `codec:"t"`
	LiquiditySupply uint64 `codec:"s"`
}

type priceRecord struct {
	BasePrice  uint64 `codec:"b"`
	TokenPrice uint64 `codec:"t"`
}

// Persister saves and restores a Store through the key-value database.
// Records are CBOR-encoded and passed through the configured compressor.
type Persister struct {
	db     database.DB
	comp   compression.Compressor
	handle codec.Handle
}

func NewPersister(db database.DB, comp compression.Compressor) *Persister {
	return &Persister{
		db:     db,
		comp:   comp,
		handle: &codec.CborHandle{},
	}
}

func accountKey(asset Asset, account Account) []byte {
	return []byte(fmt.Sprintf("acct/%s/%s", asset, account))
}

func assetPrefix(asset Asset) []byte {
	return []byte(fmt.Sprintf("acct/%s/", asset))
}

// prefixSuccessor returns the smallest key ordered after every key carrying
// the prefix, so a scan up to it covers the full account alphabet including
// names beginning with 0xFF. Nil means no upper bound exists.
func prefixSuccessor(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

func (p *Persister) encode(v interface{}) ([]byte, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, p.handle).Encode(v); err != nil {
		return nil, err
	}
	return p.comp.Compress(buf)
}

func (p *Persister) decode(data []byte, v interface{}) error {
	raw, err := p.comp.Decompress(data)
	if err != nil {
		return err
	}
	return codec.NewDecoderBytes(raw, p.handle).Decode(v)
}

// Save writes the whole store as one atomic batch: stale account entries are
// deleted, current entries and the pool singletons rewritten.
func (p *Persister) Save(ctx context.Context, s *Store) error {
	var ops []database.BatchOperation

	for _, asset := range []Asset{AssetBase, AssetToken, AssetLiquidity} {
		prefix := assetPrefix(asset)
		it, err := p.db.Iterator(ctx, prefix, prefixSuccessor(prefix))
		if err != nil {
			return fmt.Errorf("failed to scan %s ledger: %w", asset, err)
		}
		for it.Next() {
			// The end bound is inclusive; skip the successor key itself.
			if !bytes.HasPrefix(it.Key(), prefix) {
				continue
			}
			key := make([]byte, len(it.Key()))
			copy(key, it.Key())
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: key})
		}
		if err := it.Error(); err != nil {
			it.Close()
			return err
		}
		it.Close()

		for _, account := range s.Accounts(asset) {
			value, err := p.encode(balanceRecord{Value: uint64(s.Balance(asset, account))})
			if err != nil {
				return err
			}
			ops = append(ops, database.BatchOperation{
				Type:  database.BatchPut,
				Key:   accountKey(asset, account),
				Value: value,
			})
		}
	}

	pool := s.Pool()
	poolValue, err := p.encode(poolRecord{
		BaseReserve:     uint64(pool.BaseReserve),
		TokenReserve:    uint64(pool.TokenReserve),
		LiquiditySupply: uint64(pool.LiquiditySupply),
	})
	if err != nil {
		return err
	}
	ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: keyPool, Value: poolValue})

	price := s.Price()
	priceValue, err := p.encode(priceRecord{
		BasePrice:  uint64(price.BasePrice),
		TokenPrice: uint64(price.TokenPrice),
	})
	if err != nil {
		return err
	}
	ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: keyPrice, Value: priceValue})

	return p.db.Batch(ctx, ops)
}

// Load restores a Store from the database. A database with no pool record
// yields a fresh zero-value store.
func (p *Persister) Load(ctx context.Context) (*Store, error) {
	s := NewStore()

	for _, asset := range []Asset{AssetBase, AssetToken, AssetLiquidity} {
		prefix := assetPrefix(asset)
		it, err := p.db.Iterator(ctx, prefix, prefixSuccessor(prefix))
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s ledger: %w", asset, err)
		}
		for it.Next() {
			if !bytes.HasPrefix(it.Key(), prefix) {
				continue
			}
			account := Account(it.Key()[len(prefix):])
			var rec balanceRecord
			if err := p.decode(it.Value(), &rec); err != nil {
				it.Close()
				return nil, fmt.Errorf("corrupt %s balance record for %q: %w", asset, account, err)
			}
			s.SetBalance(asset, account, amount.Balance(rec.Value))
		}
		if err := it.Error(); err != nil {
			it.Close()
			return nil, err
		}
		it.Close()
	}

	poolData, err := p.db.Read(ctx, keyPool)
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return s, nil
		}
		return nil, err
	}
	var pool poolRecord
	if err := p.decode(poolData, &pool); err != nil {
		return nil, fmt.Errorf("corrupt pool record: %w", err)
	}
	s.SetPool(PoolState{
		BaseReserve:     amount.Balance(pool.BaseReserve),
		TokenReserve:    amount.Balance(pool.TokenReserve),
		LiquiditySupply: amount.Balance(pool.LiquiditySupply),
	})

	priceData, err := p.db.Read(ctx, keyPrice)
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return s, nil
		}
		return nil, err
	}
	var price priceRecord
	if err := p.decode(priceData, &price); err != nil {
		return nil, fmt.Errorf("corrupt price record: %w", err)
	}
	s.SetPrice(PriceSnapshot{
		BasePrice:  amount.Balance(price.BasePrice),
		TokenPrice: amount.Balance(price.TokenPrice),
	})

	return s, nil
}
