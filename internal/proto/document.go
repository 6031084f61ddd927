package proto

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	fieldPath   = "path"
	fieldFields = "fields"
)

func errUnimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

// EncodeDocument packs a document path and its fields into the wire form.
func EncodeDocument(path string, fields map[string]any) (*structpb.Struct, error) {
	f, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("invalid document fields: %w", err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldPath:   structpb.NewStringValue(path),
		fieldFields: structpb.NewStructValue(f),
	}}, nil
}

// DecodeDocument is the inverse of EncodeDocument. Numbers come back as float64.
func DecodeDocument(s *structpb.Struct) (string, map[string]any, error) {
	if s == nil {
		return "", nil, fmt.Errorf("empty document")
	}
	p, ok := s.GetFields()[fieldPath]
	if !ok {
		return "", nil, fmt.Errorf("document without path")
	}
	if _, ok := p.GetKind().(*structpb.Value_StringValue); !ok {
		return "", nil, fmt.Errorf("document path is not a string")
	}
	fields := map[string]any{}
	if f := s.GetFields()[fieldFields].GetStructValue(); f != nil {
		fields = f.AsMap()
	}
	return p.GetStringValue(), fields, nil
}

// EncodeDocuments packs a collection.
func EncodeDocuments(docs []*structpb.Struct) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(docs))
	for _, d := range docs {
		values = append(values, structpb.NewStructValue(d))
	}
	return &structpb.ListValue{Values: values}
}
