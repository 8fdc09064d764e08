// internal/escpos/ticket.go
package escpos

import (
	"fmt"

	"golang.org/x/text/encoding"
)

// Ticket is an ordered sequence of blocks printed top to bottom. A ticket is
// built once per print job, consumed by Serialize and then discarded.
type Ticket struct {
	Blocks          []Block
	FeedLinesOnHead int
	FeedLinesOnTail int
}

// DefaultFeedLinesOnTail leaves enough paper after the last block for the cut.
const DefaultFeedLinesOnTail = 3

// NewTicket creates an empty ticket with default head and tail feeds.
func NewTicket() *Ticket {
	return &Ticket{
		FeedLinesOnHead: 0,
		FeedLinesOnTail: DefaultFeedLinesOnTail,
	}
}

// Append adds blocks to the end of the ticket.
func (t *Ticket) Append(blocks ...Block) {
	t.Blocks = append(t.Blocks, blocks...)
}

// Serialize renders the ticket into an ordered sequence of byte chunks: the
// device reset, an optional head feed, a style reset followed by each block's
// encoding, and an optional tail feed. The caller flattens the chunks before
// handing them to a transport; no single giant buffer is allocated here.
func (t *Ticket) Serialize(enc *encoding.Encoder) ([][]byte, error) {
	chunks := make([][]byte, 0, len(t.Blocks)*2+3)
	chunks = append(chunks, ESC_POS_COMMANDS.INITIALIZE)

	if t.FeedLinesOnHead > 0 {
		chunks = append(chunks, FeedLines(t.FeedLinesOnHead))
	}

	for i, block := range t.Blocks {
		chunks = append(chunks, ESC_POS_COMMANDS.TEXT_RESET)

		// Blank blocks carry no encoding of their own; they become a
		// feed command at this level.
		if blank, ok := block.(*Blank); ok {
			count := blank.Count
			if count <= 0 {
				count = 1
			}
			chunks = append(chunks, FeedLines(count))
			continue
		}

		encoded, err := block.Encode(enc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode block %d: %w", i, err)
		}
		chunks = append(chunks, encoded)
	}

	if t.FeedLinesOnTail > 0 {
		chunks = append(chunks, FeedLines(t.FeedLinesOnTail))
	}

	return chunks, nil
}
