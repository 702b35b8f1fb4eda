package module

import "go-melodium/hw"

// patchOutput is a jack whose destination can be replugged from the module
// loop when MIDI ports come and go. The mirror always sees every write.
type patchOutput struct {
	hw.MultiOutput
	mirror *hw.MemOutput
}

func newPatchOutput() *patchOutput {
	p := &patchOutput{mirror: &hw.MemOutput{}}
	p.replug(nil)
	return p
}

// replug points the jack at target and brings it up to the current value
func (p *patchOutput) replug(target hw.Output) {
	p.MultiOutput = hw.MultiOutput{p.mirror}
	if target == nil {
		return
	}
	p.MultiOutput = append(p.MultiOutput, target)
	if p.mirror.Writes() > 0 {
		target.Voltage(p.mirror.Value())
	}
}
