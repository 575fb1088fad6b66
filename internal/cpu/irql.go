package cpu

// Irql is the process-wide nesting privilege level. It mirrors the interrupt
// request levels guest kernels expect.
type Irql uint32

const (
	IrqlPassive Irql = iota
	IrqlAPC
	IrqlDispatch
	IrqlDPC
)

// RaiseIrql atomically installs a new level and returns the previous one. No
// validation is performed; raise/lower pairing is the caller's
// responsibility.
func (p *Processor) RaiseIrql(new Irql) Irql {
	return Irql(p.irql.Swap(uint32(new)))
}

// LowerIrql atomically restores a level previously returned by RaiseIrql.
func (p *Processor) LowerIrql(old Irql) {
	p.irql.Swap(uint32(old))
}
