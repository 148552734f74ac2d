package bytecode

import (
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"leo/internal/objtab"
)

// ImageSchema is the image format version. Bump it when imagePayload changes.
const ImageSchema uint16 = 1

const imageMagic = "LEOB"

// ErrBadImage is returned for data that is not a script image.
var ErrBadImage = errors.New("not a leo script image")

// imagePayload is the on-disk form of a Script. Opcodes and handler ids are
// stored as indexes into name tables so an image survives a different host
// opcode layout and a fresh context group.
type imagePayload struct {
	Magic    string
	Schema   uint16
	Opcodes  []string
	Handlers []string
	Strings  []string
	Commands []imageHandler
	Funcs    []imageHandler
}

type imageHandler struct {
	Name string
	Code []imageInstruction
}

type imageInstruction struct {
	_msgpack struct{} `msgpack:",as_array"`
	Op       uint16
	Param1   uint16
	Param2   uint32
}

// EncodeImage writes s to w.
func EncodeImage(w io.Writer, s *Script, ops OpcodeNamer, ids HandlerNamer) error {
	if ops == nil {
		ops = BaseOpcodes{}
	}
	p := imagePayload{Magic: imageMagic, Schema: ImageSchema}
	opIndex := make(map[Opcode]uint16)
	handlerIndex := make(map[HandlerID]uint32)

	internOp := func(op Opcode) (uint16, error) {
		if idx, ok := opIndex[op]; ok {
			return idx, nil
		}
		name := ops.OpcodeName(op)
		if name == "" {
			return 0, fmt.Errorf("opcode %d has no name", op)
		}
		idx, err := safecast.Conv[uint16](len(p.Opcodes))
		if err != nil {
			return 0, err
		}
		p.Opcodes = append(p.Opcodes, name)
		opIndex[op] = idx
		return idx, nil
	}
	internHandler := func(id HandlerID) (uint32, error) {
		if idx, ok := handlerIndex[id]; ok {
			return idx, nil
		}
		name := ""
		if ids != nil {
			name = ids.HandlerName(id)
		}
		if name == "" {
			return 0, fmt.Errorf("handler id %d has no name", id)
		}
		idx, err := safecast.Conv[uint32](len(p.Handlers))
		if err != nil {
			return 0, err
		}
		p.Handlers = append(p.Handlers, name)
		handlerIndex[id] = idx
		return idx, nil
	}

	encodeList := func(list []*Handler) ([]imageHandler, error) {
		out := make([]imageHandler, 0, len(list))
		for _, h := range list {
			ih := imageHandler{Name: h.Name, Code: make([]imageInstruction, 0, len(h.Instructions))}
			for _, in := range h.Instructions {
				op, err := internOp(in.Opcode)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", h.Name, err)
				}
				p2 := in.Param2
				if in.Opcode == OpCallHandler {
					if p2, err = internHandler(HandlerID(in.Param2)); err != nil {
						return nil, fmt.Errorf("%s: %w", h.Name, err)
					}
				}
				ih.Code = append(ih.Code, imageInstruction{Op: op, Param1: in.Param1, Param2: p2})
			}
			out = append(out, ih)
		}
		return out, nil
	}

	var err error
	p.Strings = s.strings
	if p.Commands, err = encodeList(s.commands); err != nil {
		return err
	}
	if p.Funcs, err = encodeList(s.functions); err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(&p)
}

// DecodeImage reads a script image, resolving opcode names with ops and
// interning handler names with ids. The script is owned by owner, which
// may be the zero Ref.
func DecodeImage(r io.Reader, ops OpcodeResolver, ids HandlerInterner, owner objtab.Ref) (*Script, error) {
	if ops == nil {
		ops = BaseOpcodes{}
	}
	var p imagePayload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadImage, err)
	}
	if p.Magic != imageMagic {
		return nil, ErrBadImage
	}
	if p.Schema != ImageSchema {
		return nil, fmt.Errorf("unsupported image schema %d (want %d)", p.Schema, ImageSchema)
	}

	opcodes := make([]Opcode, len(p.Opcodes))
	for i, name := range p.Opcodes {
		op, ok := ops.LookupOpcode(name)
		if !ok {
			return nil, fmt.Errorf("unknown instruction %q", name)
		}
		opcodes[i] = op
	}
	handlerIDs := make([]HandlerID, len(p.Handlers))
	for i, name := range p.Handlers {
		handlerIDs[i] = ids.HandlerID(name)
	}

	b := NewScriptBuilder(ids)
	b.SetOwner(owner)
	for _, str := range p.Strings {
		b.AddString(str)
	}
	decodeList := func(list []imageHandler, add func(string, []Instruction) (*Handler, error)) error {
		for _, ih := range list {
			code := make([]Instruction, 0, len(ih.Code))
			for pc, in := range ih.Code {
				if int(in.Op) >= len(opcodes) {
					return fmt.Errorf("%s:%d: opcode index %d out of range", ih.Name, pc, in.Op)
				}
				op := opcodes[in.Op]
				p2 := in.Param2
				if op == OpCallHandler {
					if uint64(p2) >= uint64(len(handlerIDs)) {
						return fmt.Errorf("%s:%d: handler index %d out of range", ih.Name, pc, p2)
					}
					p2 = uint32(handlerIDs[p2])
				}
				code = append(code, Instruction{Opcode: op, Param1: in.Param1, Param2: p2})
			}
			if _, err := add(ih.Name, code); err != nil {
				return err
			}
		}
		return nil
	}
	if err := decodeList(p.Commands, b.AddCommand); err != nil {
		return nil, err
	}
	if err := decodeList(p.Funcs, b.AddFunction); err != nil {
		return nil, err
	}
	return b.Build(), nil
}
