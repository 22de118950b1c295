package password

type Policy struct {
	MinLength int
	MaxBytes  int
}

// Admin es la política de la password de administración.
// bcrypt ignora todo lo que pase de 72 bytes.
var Admin = Policy{MinLength: 8, MaxBytes: 72}

func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	if p.MaxBytes > 0 && len(s) > p.MaxBytes {
		reasons = append(reasons, "too_long")
	}
	return len(reasons) == 0, reasons
}
