package cpu

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/ctl"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
)

// timestamp returns clock * NumChannels + channel + 1
func timestamp(channel int) ctl.Column {
	return ctl.LinearCombination(
		[]int{Cols.Clock},
		[]field.Element{field.New(memory.NumChannels)},
		field.New(uint64(channel+1)),
	)
}

// CtlDataMemory returns the memory operation of a general-purpose channel in
// the column order of the memory table
func CtlDataMemory(channel int) []ctl.Column {
	c := Cols.Channels[channel]
	res := ctl.Singles(c.IsRead, c.AddrContext, c.AddrSegment, c.AddrVirtual)
	res = append(res, ctl.Singles(c.Value[:]...)...)
	return append(res, timestamp(channel))
}

// CtlFilterMemory selects the rows using a channel
func CtlFilterMemory(channel int) ctl.Filter {
	return ctl.NewSimpleFilter(Cols.Channels[channel].Used)
}

// CtlDataPoseidon returns a sponge request: base address, length,
// timestamp and digest
func CtlDataPoseidon() []ctl.Column {
	res := ctl.Singles(Cols.SpongeArgs[:]...)
	res = append(res, timestamp(memory.SpongeChannel))
	return append(res, ctl.Singles(Cols.SpongeDigest[:]...)...)
}

// CtlFilterPoseidon selects the rows issuing a sponge request
func CtlFilterPoseidon() ctl.Filter {
	return ctl.NewSimpleFilter(Cols.IsPoseidon)
}
