package engine

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog/log"

	"vex/chat"
	"vex/protocol"
	"vex/stream"
	"vex/tool"
)

const (
	loopGuardReadOnlyMessage = "[loop guard] Repeated identical read/search tool calls; stopping to avoid an infinite loop."
	loopGuardMutatingMessage = "[loop guard] Repeated identical mutating tool call; stopping to avoid applying the same change twice."
	nudgeMessage             = "Do not repeat identical tool calls with the same arguments. Either try a different approach or answer with what you already know."
	correctiveRetryMessage   = "You did not execute any tool call, but answering this accurately requires checking the actual workspace. Please call the appropriate tool before responding."

	// fallbackBlockIndexBase separates synthetic UI block indices for
	// text-tagged fallback calls from real stream content-block indices,
	// which are always small in practice.
	fallbackBlockIndexBase = 100000
)

// runRounds is the §4.4.3 round loop: it drives C2+C1 per round, decides
// whether the round produced tool calls, executes them, and repeats until
// the assistant yields no further tool calls or a guard fires.
func (e *Engine) runRounds(ctx context.Context, turn *turnState) (string, error) {
	var lastAssistantText string

	for {
		turn.round++
		if turn.round > e.Opts.MaxToolRounds {
			suffix := fmt.Sprintf("[loop guard] Reached the maximum of %d tool-call rounds for this turn.", e.Opts.MaxToolRounds)
			return e.appendGuardSuffix(lastAssistantText, suffix), nil
		}

		e.pruneHistory(turn)

		text, toolUseBlocks, toolUseIndices, err := e.runOneRound(ctx, turn)
		if err != nil {
			return "", err
		}
		lastAssistantText = text

		if len(toolUseBlocks) == 0 {
			if turn.evidenceRequired && e.Opts.IsLocal && !turn.sawToolRound && turn.forcedToolRetryCount < 2 {
				turn.forcedToolRetryCount++
				e.history = append(e.history, chat.NewTextMessage(chat.RoleUser, correctiveRetryMessage))
				continue
			}
			e.emitFinalText(turn, text)
			return text, nil
		}

		turn.sawToolRound = true
		if err := e.runToolRound(ctx, turn, toolUseBlocks, toolUseIndices); err != nil {
			return "", err
		}

		if suffix, nudge := e.applyRepeatGuard(turn, toolUseBlocks); suffix != "" {
			return e.appendGuardSuffix(lastAssistantText, suffix), nil
		} else if nudge {
			e.history = append(e.history, chat.NewTextMessage(chat.RoleUser, nudgeMessage))
		}
	}
}

func (e *Engine) appendGuardSuffix(lastAssistantText, suffix string) string {
	combined := suffix
	if lastAssistantText != "" {
		combined = lastAssistantText + "\n\n" + suffix
	}
	for i := len(e.history) - 1; i >= 0; i-- {
		if e.history[i].Role == chat.RoleAssistant {
			e.history[i].Text = combined
			e.history[i].Blocks = nil
			break
		}
	}
	return combined
}

// streamBlockAgg accumulates one content block across a round's stream
// events, in the shape the Dynamic JSON design note describes: reparse the
// partial_json buffer on every extension rather than streaming-parse it
// (Design Notes §9).
type streamBlockAgg struct {
	kind      chat.BlockKind
	index     int
	firstSeen int
	text      string
	id        string
	name      string
	inputRaw  []byte
	input     chat.Value
}

// runOneRound opens one stream via C2, drains it through C1 (§4.4.3 steps
// 1-4), assembles the assistant message, appends it to history, and
// returns the round's plain text and tool-use blocks.
func (e *Engine) runOneRound(ctx context.Context, turn *turnState) (string, []chat.ContentBlock, []int, error) {
	body, endpointURL, err := e.buildRequest()
	if err != nil {
		return "", nil, nil, err
	}
	e.payloadLog.logRequest(endpointURL, body)

	rc, err := protocol.OpenStream(ctx, e.Client, endpointURL, e.Wire, body, e.Opts.protocolOptions())
	if err != nil {
		return "", nil, nil, err
	}
	defer rc.Close()

	aggs := make(map[int]*streamBlockAgg)
	order := make([]int, 0, 4)
	nextOrder := 0

	parser := stream.NewParser()
	buf := make([]byte, 8192)
	done := false
	for !done {
		n, readErr := rc.Read(buf)
		if n > 0 {
			e.payloadLog.logFrame(buf[:n])
			events, perr := parser.Process(buf[:n])
			if perr != nil {
				return "", nil, nil, perr
			}
			for _, ev := range events {
				if e.applyStreamEvent(&aggs, &order, &nextOrder, ev) {
					done = true
				}
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				return "", nil, nil, readErr
			}
			break
		}
	}

	sort.Ints(order)
	var assistantBlocks []chat.ContentBlock
	var toolUseBlocks []chat.ContentBlock
	var toolUseIndices []int
	var concatText string
	for _, idx := range order {
		agg := aggs[idx]
		switch agg.kind {
		case chat.BlockText:
			assistantBlocks = append(assistantBlocks, chat.NewTextBlock(agg.text))
			concatText += agg.text
		case chat.BlockToolUse:
			input := agg.input
			if input.Kind != chat.KindObject {
				input = chat.EmptyObject()
			}
			block := chat.NewToolUseBlock(agg.id, agg.name, input)
			assistantBlocks = append(assistantBlocks, block)
			toolUseBlocks = append(toolUseBlocks, block)
			toolUseIndices = append(toolUseIndices, idx)
		}
	}

	fallbackUsed := false
	if len(toolUseBlocks) == 0 && e.Opts.IsLocal {
		if tagged := parseTaggedCalls(concatText, turn.round); len(tagged) > 0 {
			toolUseBlocks = tagged
			fallbackUsed = true
			for i, b := range tagged {
				index := fallbackBlockIndexBase + i
				toolUseIndices = append(toolUseIndices, index)
				// These blocks never went through a stream ContentBlockStart
				// event (parseTaggedCalls reads them off the accumulated
				// text, not the wire), so §4.5 invariant 1 still needs one
				// emitted here before toolround.go's first StreamBlockDelta.
				e.emit(chat.StreamBlockStart(index, chat.StreamBlock{
					Kind: chat.StreamBlockToolCall, ToolCallID: b.ID, ToolName: b.Name,
					ToolInput: b.Input, Status: chat.ToolPending,
				}))
			}
		}
	}

	useStructured := e.Opts.StructuredToolProtocol && !fallbackUsed
	if useStructured {
		for i, b := range assistantBlocks {
			if b.Kind == chat.BlockText {
				assistantBlocks[i].Text = truncateHistoryText(b.Text, e.Opts.MaxAssistantHistoryChars)
			}
		}
		e.history = append(e.history, chat.NewBlockMessage(chat.RoleAssistant, assistantBlocks))
	} else {
		plain := truncateHistoryText(composePlainText(concatText, toolUseBlocks), e.Opts.MaxAssistantHistoryChars)
		e.history = append(e.history, chat.NewTextMessage(chat.RoleAssistant, plain))
	}

	return concatText, toolUseBlocks, toolUseIndices, nil
}

// composePlainText renders the text-protocol assistant message body: the
// model's own text plus, if it made tool calls, the tagged rendering of
// them. An empty-text tool-only turn renders as just the tagged text
// (spec.md §8 boundary: "the assistant history text is the rendered
// tool-call text, not the empty string").
func composePlainText(text string, toolUseBlocks []chat.ContentBlock) string {
	rendered := renderTaggedCalls(toolUseBlocks)
	if rendered == "" {
		return text
	}
	if text == "" {
		return rendered
	}
	return text + "\n" + rendered
}

// applyStreamEvent folds one unified StreamEvent into the per-round
// aggregation state, emitting UI updates for ToolCall blocks as their input
// streams in (spec.md §4.4.4 step 5; Thinking/Text blocks are buffered
// silently per the deferred-thinking design in §4.4.10 and Design Notes §9
// — they are only ever shown once, at turn end, via emitFinalText). Returns
// true if this event is a MessageStop that should end the drain loop.
func (e *Engine) applyStreamEvent(aggs *map[int]*streamBlockAgg, order *[]int, nextOrder *int, ev chat.StreamEvent) bool {
	switch ev.Kind {
	case chat.EventContentBlockStart:
		agg := &streamBlockAgg{kind: ev.Block.Kind, index: ev.Index, firstSeen: *nextOrder}
		*nextOrder++
		if _, seen := (*aggs)[ev.Index]; !seen {
			*order = append(*order, ev.Index)
		}
		switch ev.Block.Kind {
		case chat.BlockToolUse:
			agg.id = ev.Block.ID
			agg.name = ev.Block.Name
			agg.input = ev.Block.Input
			if agg.input.Kind != chat.KindObject {
				agg.input = chat.EmptyObject()
			}
			e.emit(chat.StreamBlockStart(ev.Index, chat.StreamBlock{
				Kind: chat.StreamBlockToolCall, ToolCallID: agg.id, ToolName: agg.name,
				ToolInput: agg.input, Status: chat.ToolPending,
			}))
		case chat.BlockText:
			agg.text = ev.Block.Text
		}
		(*aggs)[ev.Index] = agg

	case chat.EventContentBlockDelta:
		agg, ok := (*aggs)[ev.Index]
		if !ok {
			agg = &streamBlockAgg{kind: chat.BlockText, index: ev.Index, firstSeen: *nextOrder}
			*nextOrder++
			*order = append(*order, ev.Index)
			(*aggs)[ev.Index] = agg
		}
		if ev.HasTextDelta {
			agg.kind = chat.BlockText
			// The computed delta itself is intentionally not forwarded as a
			// live update: spec.md §4.4.10 defers every text block until the
			// round finishes, since whether it turns out to be a ToolUse
			// round isn't known until the last content block closes. Only
			// computeTextSuffix's redundant-retransmit dedup is used here;
			// the suffix is replayed once, whole, via emitFinalText.
			agg.text, _, _ = computeTextSuffix(agg.text, ev.TextDelta)
		}
		if ev.HasPartialJSON {
			agg.kind = chat.BlockToolUse
			agg.inputRaw = append(agg.inputRaw, []byte(ev.PartialJSONDelta)...)
			if v, err := chat.ParseValue(agg.inputRaw); err == nil {
				agg.input = v
			}
			e.emit(chat.StreamBlockDelta(ev.Index, chat.StreamBlock{
				Kind: chat.StreamBlockToolCall, ToolCallID: agg.id, ToolName: agg.name,
				ToolInput: agg.input, Status: chat.ToolPending,
			}))
		}

	case chat.EventContentBlockStop:
		if agg, ok := (*aggs)[ev.Index]; ok && agg.kind == chat.BlockToolUse && len(agg.inputRaw) > 0 {
			if v, err := chat.ParseValue(agg.inputRaw); err == nil {
				agg.input = v
			}
		}

	case chat.EventMessageStop:
		return true

	case chat.EventUnknown:
		log.Trace().Msg("engine: dropping unknown stream event")
	}
	return false
}

// emitFinalText implements Design Notes §9 "Deferred thinking blocks": on
// turn end with no further tool use, replay the buffered text exactly once
// as a FinalText block.
func (e *Engine) emitFinalText(turn *turnState, text string) {
	if text == "" {
		return
	}
	e.emit(chat.StreamBlockStart(0, chat.StreamBlock{Kind: chat.StreamBlockFinalText, Content: text}))
	e.emit(chat.StreamBlockComplete(0))
}

func (e *Engine) buildRequest() ([]byte, string, error) {
	endpointURL := e.Endpoint
	switch e.Wire {
	case protocol.OpenAI:
		endpointURL = protocol.NormalizeOpenAIURL(e.Endpoint)
		body, err := protocol.BuildOpenAIRequest(e.Model, e.System, e.history, e.Tools, e.Opts.protocolOptions())
		return body, endpointURL, err
	default:
		body, err := protocol.BuildAnthropicRequest(e.Model, e.System, e.history, e.Tools, e.Opts.protocolOptions())
		return body, endpointURL, err
	}
}

// roundSignature renders calls as the ordered "<tool_name>:<json(input)>"
// list spec.md §4.4.7/§GLOSSARY calls a round signature, using the
// canonical tool name so an alias (list_directory vs list_files) can't
// evade repeat detection.
func roundSignature(calls []chat.ContentBlock) []string {
	sig := make([]string, 0, len(calls))
	for _, c := range calls {
		raw, _ := c.Input.MarshalJSON()
		sig = append(sig, fmt.Sprintf("%s:%s", tool.CanonicalName(c.Name), string(raw)))
	}
	return sig
}

func signaturesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isReadOnlyRound applies the closed set from spec.md §4.4.8: a round counts
// as read-only for loop-guard purposes only if every block is read_file,
// list_files or search_files (aliases included), regardless of whether the
// call is otherwise classified mutating.
func isReadOnlyRound(calls []chat.ContentBlock) bool {
	if len(calls) == 0 {
		return false
	}
	for _, c := range calls {
		switch tool.CanonicalName(c.Name) {
		case tool.ReadFile, tool.ListFiles, tool.SearchFiles:
		default:
			return false
		}
	}
	return true
}

// requiresApproval reports whether canonicalName needs a ToolApprovalRequest
// before it runs (spec.md §4.4.4 step 3): mutating tools always do;
// non-mutating tools do only when the tool_confirm policy is on.
func (e *Engine) requiresApproval(canonicalName string) bool {
	if tool.IsMutating(canonicalName) {
		return true
	}
	return e.Opts.ToolConfirm
}

// isMutatingRound reports whether at least one tool in calls requires
// approval (spec.md §4.4.8 "at least one tool requires confirmation").
func (e *Engine) isMutatingRound(calls []chat.ContentBlock) bool {
	for _, c := range calls {
		if e.requiresApproval(tool.CanonicalName(c.Name)) {
			return true
		}
	}
	return false
}

// applyRepeatGuard implements spec.md §4.4.7 guards 2 and 3. It compares
// this round's signature to the previous round's, updates the
// loop-detection state (Design Notes §9: "Keep only the previous round's
// signature plus two integer counters"), and reports a non-empty
// terminateSuffix if the engine must stop, or injectNudge if a one-shot
// corrective message should be appended before looping.
func (e *Engine) applyRepeatGuard(turn *turnState, calls []chat.ContentBlock) (terminateSuffix string, injectNudge bool) {
	sig := roundSignature(calls)
	readOnly := isReadOnlyRound(calls)
	mutating := e.isMutatingRound(calls)
	identical := turn.prevSignature != nil && signaturesEqual(sig, turn.prevSignature)

	defer func() {
		turn.prevSignature = sig
		turn.prevWasReadOnly = readOnly
		turn.prevWasMutating = mutating
	}()

	if identical && mutating && turn.prevWasMutating {
		return loopGuardMutatingMessage, false
	}
	if identical && readOnly && turn.prevWasReadOnly {
		turn.repeatStreak++
		if turn.repeatStreak >= 2 {
			return loopGuardReadOnlyMessage, false
		}
		return "", true
	}
	turn.repeatStreak = 0
	return "", false
}
