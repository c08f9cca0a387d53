package htype

import (
	"strings"
	"testing"

	"github.com/bytecodealliance/wasm-tools-go/wit"

	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
)

func TestTypeDeclRecord(t *testing.T) {
	pkg := gen.NewPackage("example/host")
	file := pkg.File("types.go")

	td := named("point", &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.S32{}},
		{Name: "y", Type: wit.S32{}},
	}})

	goName, err := TypeDecl(file, pkg, td)
	if err != nil {
		t.Fatal(err)
	}
	if goName != "Point" {
		t.Errorf("TypeDecl() = %q, want %q", goName, "Point")
	}
	if !strings.Contains(string(file.Content), "type Point struct") {
		t.Errorf("emitted record missing struct decl:\n%s", file.Content)
	}
	if !strings.Contains(string(file.Content), "X int32") {
		t.Errorf("emitted record missing field X:\n%s", file.Content)
	}
}

func TestTypeDeclVariant(t *testing.T) {
	pkg := gen.NewPackage("example/host")
	file := pkg.File("types.go")

	td := named("msg", &wit.Variant{Cases: []wit.Case{
		{Name: "text", Type: wit.String{}},
		{Name: "empty"},
	}})

	goName, err := TypeDecl(file, pkg, td)
	if err != nil {
		t.Fatal(err)
	}
	if goName != "Msg" {
		t.Errorf("TypeDecl() = %q, want %q", goName, "Msg")
	}
	src := string(file.Content)
	for _, want := range []string{"type Msg interface", "type MsgText struct", "type MsgEmpty struct", "func (MsgText) isMsg()"} {
		if !strings.Contains(src, want) {
			t.Errorf("emitted variant missing %q:\n%s", want, src)
		}
	}
}

func TestTypeDeclEnumFromVariant(t *testing.T) {
	pkg := gen.NewPackage("example/host")
	file := pkg.File("types.go")

	td := named("color", &wit.Variant{Cases: []wit.Case{
		{Name: "red"},
		{Name: "green"},
		{Name: "blue"},
	}})

	goName, err := TypeDecl(file, pkg, td)
	if err != nil {
		t.Fatal(err)
	}
	if goName != "Color" {
		t.Errorf("TypeDecl() = %q, want %q", goName, "Color")
	}
	src := string(file.Content)
	if !strings.Contains(src, "func (e Color) String() string") {
		t.Errorf("emitted enum missing String():\n%s", src)
	}
}

func TestTypeDeclTupleAsRecord(t *testing.T) {
	pkg := gen.NewPackage("example/host")
	file := pkg.File("types.go")

	td := named("pair", &wit.Tuple{Types: []wit.Type{wit.U32{}, wit.String{}}})

	goName, err := TypeDecl(file, pkg, td)
	if err != nil {
		t.Fatal(err)
	}
	src := string(file.Content)
	if !strings.Contains(src, "type "+goName+" struct") || !strings.Contains(src, "F0 uint32") || !strings.Contains(src, "F1 string") {
		t.Errorf("emitted tuple-as-record missing expected fields:\n%s", src)
	}
}
