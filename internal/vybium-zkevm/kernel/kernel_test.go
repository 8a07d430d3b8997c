package kernel

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/poseidon"
)

func TestOpcodeStrings(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{ADD, "ADD"},
		{JUMPI, "JUMPI"},
		{PUSH4, "PUSH4"},
		{SWAP16, "SWAP16"},
		{MLOAD_GENERAL, "MLOAD_GENERAL"},
		{POSEIDON_GENERAL, "POSEIDON_GENERAL"},
		{Opcode(0xef), "INVALID(0xef)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Opcode(0x%02x).String() = %q, want %q", byte(tt.op), got, tt.want)
		}
	}
}

func TestPushBytes(t *testing.T) {
	require.Equal(t, 1, PUSH1.PushBytes())
	require.Equal(t, 4, PUSH4.PushBytes())
	require.Equal(t, 32, PUSH32.PushBytes())
	require.Equal(t, 0, ADD.PushBytes())
}

func TestAssembleLabels(t *testing.T) {
	k, err := NewAssembler().
		Label(LabelMain).
		PushUint(0).
		PushUint(0x1234).
		Op(ADD).
		HaltLoop().
		Assemble()
	require.NoError(t, err)

	// PUSH1 00, PUSH2 12 34, ADD
	require.Equal(t, 0, k.MainPC)
	require.Equal(t, 6, k.HaltPC0)
	require.Equal(t, 11, k.HaltPC1)
	require.Equal(t, []byte{
		byte(PUSH1), 0x00,
		byte(PUSH1) + 1, 0x12, 0x34,
		byte(ADD),
		byte(PUSH4), 0, 0, 0, 6,
		byte(JUMP),
	}, k.Code)
	require.True(t, k.IsHaltPC(6))
	require.True(t, k.IsHaltPC(11))
	require.False(t, k.IsHaltPC(7))
	require.Equal(t, poseidon.Hash(CodeElements(k.Code)), k.CodeHash)
}

func TestAssembleErrors(t *testing.T) {
	_, err := NewAssembler().Label(LabelMain).Label(LabelMain).Assemble()
	require.Error(t, err)

	_, err = NewAssembler().Label(LabelMain).PushLabel("nowhere").HaltLoop().Assemble()
	require.ErrorContains(t, err, "undefined label nowhere")

	_, err = NewAssembler().Label(LabelMain).Op(PUSH1).Assemble()
	require.Error(t, err)

	_, err = NewAssembler().Label(LabelMain).Op(Opcode(0xef)).Assemble()
	require.Error(t, err)

	_, err = NewAssembler().Label(LabelMain).Op(JUMPDEST).Assemble()
	require.ErrorContains(t, err, LabelHaltPC0)
}

func TestNewKernelCopiesInputs(t *testing.T) {
	code := []byte{byte(JUMPDEST), byte(PUSH1), 0, byte(JUMP)}
	labels := map[string]int{LabelMain: 0, LabelHaltPC0: 1, LabelHaltPC1: 3}

	k, err := NewKernel(code, labels)
	require.NoError(t, err)

	code[0] = 0xff
	labels[LabelMain] = 2
	require.Equal(t, byte(JUMPDEST), k.Code[0])
	require.Equal(t, 0, k.MainPC)

	_, err = NewKernel(code, map[string]int{LabelMain: 9})
	require.Error(t, err)

	_, err = NewKernel(nil, labels)
	require.Error(t, err)
}

func TestDefaultKernel(t *testing.T) {
	k := Default()
	require.Equal(t, 0, k.MainPC)
	require.Equal(t, byte(PUSH4), k.Code[k.HaltPC0])
	require.Equal(t, byte(JUMP), k.Code[k.HaltPC1])
	require.Equal(t, k.HaltPC0+1+labelPushBytes, k.HaltPC1)
	require.Equal(t, len(k.Code)-1, k.HaltPC1)

	for pc := 0; pc < len(k.Code); {
		op := Opcode(k.Code[pc])
		require.True(t, op.Valid(), "invalid opcode %s at %d", op, pc)
		pc += 1 + op.PushBytes()
	}

	require.Equal(t, k.Code, Default().Code)
}

func TestPushWideValue(t *testing.T) {
	v := uint256.MustFromHex("0x100000000000000000000000000000000")
	k, err := NewAssembler().Label(LabelMain).Push(v).HaltLoop().Assemble()
	require.NoError(t, err)
	require.Equal(t, byte(PUSH1)+16, k.Code[0])
	require.Equal(t, byte(1), k.Code[1])
	require.Equal(t, 18, k.HaltPC0)
}
