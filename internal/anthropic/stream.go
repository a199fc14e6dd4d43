package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// consumeSSE parses a Server-Sent Events stream, invoking fn once per event
// with the event name and the joined data payload.
func consumeSSE(ctx context.Context, r io.Reader, fn func(event, data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var eventName string
	var dataBuf strings.Builder
	flush := func() error {
		if dataBuf.Len() == 0 {
			eventName = ""
			return nil
		}
		payload := dataBuf.String()
		dataBuf.Reset()
		name := eventName
		eventName = ""
		return fn(name, payload)
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
			// comment line
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimSpace(line[len("data:"):]))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}

// accumulator assembles a complete MessageResponse from stream events.
// Blocks arrive indexed; tool input is streamed as partial JSON fragments
// that only form a valid object once the block closes.
type accumulator struct {
	meta   MessageResponse
	blocks map[int]*ContentBlock
	inputs map[int]*strings.Builder
	order  []int
}

func newAccumulator() *accumulator {
	return &accumulator{
		blocks: make(map[int]*ContentBlock),
		inputs: make(map[int]*strings.Builder),
	}
}

func (a *accumulator) start(meta MessageResponse) {
	a.meta = meta
	a.meta.Content = nil
}

func (a *accumulator) open(index int, block ContentBlock) {
	if _, ok := a.blocks[index]; ok {
		return
	}
	b := block
	a.blocks[index] = &b
	a.order = append(a.order, index)
	if block.Type == BlockToolUse {
		a.inputs[index] = &strings.Builder{}
	}
}

func (a *accumulator) appendText(index int, text string) {
	if b := a.blocks[index]; b != nil {
		b.Text += text
	}
}

func (a *accumulator) appendThinking(index int, thinking string) {
	if b := a.blocks[index]; b != nil {
		b.Thinking += thinking
	}
}

func (a *accumulator) appendSignature(index int, signature string) {
	if b := a.blocks[index]; b != nil {
		b.Signature += signature
	}
}

func (a *accumulator) appendInput(index int, fragment string) {
	if buf := a.inputs[index]; buf != nil {
		buf.WriteString(fragment)
	}
}

// close finalizes a block and returns it, or nil for an unknown index.
func (a *accumulator) close(index int) *ContentBlock {
	b := a.blocks[index]
	if b == nil {
		return nil
	}
	if buf := a.inputs[index]; buf != nil {
		input := strings.TrimSpace(buf.String())
		if input == "" || !json.Valid([]byte(input)) {
			input = "{}"
		}
		b.Input = json.RawMessage(input)
	}
	return b
}

func (a *accumulator) finish(ev MessageDeltaEvent) {
	if ev.Delta.StopReason != nil {
		a.meta.StopReason = *ev.Delta.StopReason
	}
	if ev.Delta.StopSequence != nil {
		a.meta.StopSequence = *ev.Delta.StopSequence
	}
	if ev.Usage.OutputTokens > 0 {
		a.meta.Usage.OutputTokens = ev.Usage.OutputTokens
	}
	if ev.Usage.InputTokens > 0 {
		a.meta.Usage.InputTokens = ev.Usage.InputTokens
	}
}

func (a *accumulator) response() *MessageResponse {
	resp := a.meta
	resp.Content = make([]ContentBlock, 0, len(a.order))
	for _, index := range a.order {
		block := a.close(index)
		if block != nil {
			resp.Content = append(resp.Content, *block)
		}
	}
	if resp.Role == "" {
		resp.Role = RoleAssistant
	}
	return &resp
}
