// Package blockcache implements spec.md §4.2's block manager: a bounded
// LRU-ish cache of fixed-size disk blocks keyed by blockid, backing
// random-offset reads for the interactive viewer.
package blockcache

import (
	"github.com/standardbeagle/xmlcu/internal/alloc"
	"github.com/standardbeagle/xmlcu/internal/errors"
)

// Block is one fixed-size buffer tagged by its file-offset-derived id
// and a Touch stamp used for eviction. Touch holds the cache-wide
// sequence number of the block's most recent access, so the lowest Touch
// marks the least recently used block; it is not a count of accesses.
type Block struct {
	ID    int64
	Touch int64
	Data  []byte
}

// Cache is a capacity-bounded set of Blocks, looked up by blockid through
// a map and kept in insertion order in a slice that grows by append up to
// maxBlocks entries. There is no ordered tree and no index rebuild.
type Cache struct {
	blockSize int
	maxBlocks int
	blocks    []*Block
	byID      map[int64]*Block
	alloc     *alloc.SlabAllocator[byte]
	touchSeq  int64
}

// New creates a Cache sized to blockSize-byte blocks, growing up to
// maxBlocks entries.
func New(blockSize, maxBlocks int) *Cache {
	return &Cache{
		blockSize: blockSize,
		maxBlocks: maxBlocks,
		byID:      make(map[int64]*Block),
		alloc:     alloc.NewBlockSlabAllocator[byte](),
	}
}

// Find looks up blockid, stamping its Touch with the next sequence number
// on a hit.
func (c *Cache) Find(blockID int64) (*Block, bool) {
	b, ok := c.byID[blockID]
	if !ok {
		return nil, false
	}
	c.touchSeq++
	b.Touch = c.touchSeq
	return b, true
}

// CreateBlock allocates a fresh block for blockID, evicting the
// least-touched existing block (blockID 0 exempt from eviction, per
// spec.md §4.2) if the cache is at capacity.
func (c *Cache) CreateBlock(blockID int64) (*Block, error) {
	if _, exists := c.byID[blockID]; exists {
		return nil, errors.NewInternalError("block %d already present", blockID)
	}

	if len(c.blocks) >= c.maxBlocks {
		if err := c.evict(); err != nil {
			return nil, err
		}
	}

	buf := c.alloc.Get(c.blockSize)
	c.touchSeq++
	b := &Block{ID: blockID, Touch: c.touchSeq, Data: buf[:c.blockSize]}
	c.insert(b)
	return b, nil
}

// Insert adds an already-populated block, erroring if its id duplicates
// an existing entry (a caller mistake per spec.md §4.2) but still
// restamping that entry's Touch with the next sequence number.
func (c *Cache) Insert(b *Block) error {
	if existing, ok := c.byID[b.ID]; ok {
		c.touchSeq++
		existing.Touch = c.touchSeq
		return errors.NewInternalError("block %d already present", b.ID)
	}
	c.insert(b)
	return nil
}

func (c *Cache) insert(b *Block) {
	c.blocks = append(c.blocks, b)
	c.byID[b.ID] = b
}

// Remove evicts b from the cache, releasing its buffer back to the slab
// allocator.
func (c *Cache) Remove(b *Block) {
	delete(c.byID, b.ID)
	for i, blk := range c.blocks {
		if blk == b {
			c.blocks = append(c.blocks[:i], c.blocks[i+1:]...)
			break
		}
	}
	c.alloc.Put(b.Data[:cap(b.Data)])
}

// BufferOf returns b's backing bytes.
func (c *Cache) BufferOf(b *Block) []byte { return b.Data }

// Len reports the number of cached blocks.
func (c *Cache) Len() int { return len(c.blocks) }

// evict drops the least-touched block, skipping blockid 0 which is
// cold-reserved per spec.md §3/§4.2.
func (c *Cache) evict() error {
	var victim *Block
	for _, b := range c.blocks {
		if b.ID == 0 {
			continue
		}
		if victim == nil || b.Touch < victim.Touch {
			victim = b
		}
	}
	if victim == nil {
		return errors.NewInternalError("block cache full and no evictable block (only block 0 present)")
	}
	c.Remove(victim)
	return nil
}
