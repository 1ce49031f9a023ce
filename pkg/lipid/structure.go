package lipid

import "fmt"

// LipidSnPosition knows the chains in sn order.
type LipidSnPosition struct {
	*LipidMolecularSpecies
}

// NewLipidSnPosition numbers chains without a position by their order.
func NewLipidSnPosition(hg *Headgroup, fas []*FattyAcid) (*LipidSnPosition, error) {
	for i, fa := range fas {
		if fa.Position < 0 {
			fa.Position = i + 1
		}
	}
	m, err := NewLipidMolecularSpecies(hg, fas)
	if err != nil {
		return nil, err
	}
	return &LipidSnPosition{m}, nil
}

func (l *LipidSnPosition) Level() Level { return SnPosition }

func (l *LipidSnPosition) LipidString(level Level) (string, error) {
	switch {
	case level == SnPosition:
		return l.chainString(level), nil
	case level > SnPosition:
		return "", illegalLevel(SnPosition, level)
	}
	return l.LipidMolecularSpecies.LipidString(level)
}

// LipidStructureDefined adds double bond and substituent positions.
type LipidStructureDefined struct {
	*LipidSnPosition
}

func NewLipidStructureDefined(hg *Headgroup, fas []*FattyAcid) (*LipidStructureDefined, error) {
	sn, err := NewLipidSnPosition(hg, fas)
	if err != nil {
		return nil, err
	}
	return &LipidStructureDefined{sn}, nil
}

func (l *LipidStructureDefined) Level() Level { return StructureDefined }

func (l *LipidStructureDefined) LipidString(level Level) (string, error) {
	switch {
	case level == StructureDefined:
		return l.chainString(level), nil
	case level > StructureDefined:
		return "", illegalLevel(StructureDefined, level)
	}
	return l.LipidSnPosition.LipidString(level)
}

// LipidFullStructure adds double bond geometry.
type LipidFullStructure struct {
	*LipidStructureDefined
}

func NewLipidFullStructure(hg *Headgroup, fas []*FattyAcid) (*LipidFullStructure, error) {
	sd, err := NewLipidStructureDefined(hg, fas)
	if err != nil {
		return nil, err
	}
	return &LipidFullStructure{sd}, nil
}

func (l *LipidFullStructure) Level() Level { return FullStructure }

func (l *LipidFullStructure) LipidString(level Level) (string, error) {
	switch {
	case level == FullStructure:
		return l.chainString(level), nil
	case level > FullStructure:
		return "", illegalLevel(FullStructure, level)
	}
	return l.LipidStructureDefined.LipidString(level)
}

// LipidCompleteStructure adds stereo configurations.
type LipidCompleteStructure struct {
	*LipidFullStructure
}

func NewLipidCompleteStructure(hg *Headgroup, fas []*FattyAcid) (*LipidCompleteStructure, error) {
	fs, err := NewLipidFullStructure(hg, fas)
	if err != nil {
		return nil, err
	}
	return &LipidCompleteStructure{fs}, nil
}

func (l *LipidCompleteStructure) Level() Level { return CompleteStructure }

func (l *LipidCompleteStructure) LipidString(level Level) (string, error) {
	if level == CompleteStructure {
		return l.chainString(level), nil
	}
	return l.LipidFullStructure.LipidString(level)
}

// NewLipid builds the lipid type for level.
func NewLipid(level Level, hg *Headgroup, fas []*FattyAcid) (Lipid, error) {
	var (
		l   Lipid
		err error
	)
	switch level {
	case Species:
		l = NewLipidSpecies(hg, fas)
	case MolecularSpecies:
		l, err = NewLipidMolecularSpecies(hg, fas)
	case SnPosition:
		l, err = NewLipidSnPosition(hg, fas)
	case StructureDefined:
		l, err = NewLipidStructureDefined(hg, fas)
	case FullStructure:
		l, err = NewLipidFullStructure(hg, fas)
	case CompleteStructure:
		l, err = NewLipidCompleteStructure(hg, fas)
	default:
		err = fmt.Errorf("%w: no lipid type for %s", ErrIllegalLevel, level)
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
