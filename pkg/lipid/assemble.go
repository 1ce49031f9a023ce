package lipid

// Assembly collects what a name parser learned about a lipid. Assemble
// resolves the class, checks the chains against it and builds the lipid at
// the most specific level the notation supports.
type Assembly struct {
	HeadgroupName string
	Decorators    []*HeadgroupDecorator
	FattyAcids    []*FattyAcid
	Level         Level
	Adduct        *Adduct

	// SpeciesEthers is the ether count of a species prefix such as "dO-".
	SpeciesEthers int
	// LCBSummary marks a first chain whose hydroxyls were given as an element
	// summary (";O2") or old style "d"/"t" prefix.
	LCBSummary bool
}

// TrueChains counts the chains that carry carbons or double bonds.
func TrueChains(fas []*FattyAcid) int {
	n := 0
	for _, fa := range fas {
		if fa.NumCarbon > 0 || fa.DoubleBonds.Count > 0 {
			n++
		}
	}
	return n
}

// PrepareHeadgroup resolves the headgroup and settles the level. Classes
// given with one or two chains less than they hold are replaced by their lyso
// or fewer-chain variant, e.g. PE to LPE or TG to DG.
func (a *Assembly) PrepareHeadgroup() (*Headgroup, error) {
	hg, err := NewHeadgroup(a.HeadgroupName, a.Decorators)
	if err != nil {
		return nil, err
	}
	fas := a.FattyAcids
	if len(fas) == 1 && hg.Class.PossibleFA > 1 && a.Level > Species {
		a.Level = Species
	}

	trueFA := TrueChains(fas)
	if a.Level > Species {
		missing := hg.Class.PossibleFA - trueFA
		if (missing == 1 || missing == 2) && len(hg.Class.FewerChains) >= missing {
			if hg, err = NewHeadgroup(hg.Class.FewerChains[missing-1], a.Decorators); err != nil {
				return nil, err
			}
		}
	}

	possible := hg.Class.PossibleFA
	switch {
	case trueFA == 0 && possible != 0:
		return nil, constraintf("no fatty acyl information for lipid class '%s'", hg.Name)
	case len(fas) > hg.Class.MaxFA:
		return nil, constraintf("lipid class '%s' holds at most %d chains, got %d", hg.Name, hg.Class.MaxFA, len(fas))
	case a.Level > Species && trueFA > possible:
		return nil, constraintf("lipid class '%s' holds %d chains, got %d", hg.Name, possible, trueFA)
	}
	if a.Level > MolecularSpecies && len(fas) != hg.Class.MaxFA {
		a.Level = MolecularSpecies
	}
	if a.Level > MolecularSpecies && trueFA != possible {
		return nil, constraintf("lipid class '%s' at %s needs %d chains, got %d", hg.Name, a.Level, possible, trueFA)
	}

	if hg.Category() == SP && len(fas) > 0 {
		if hg.SPException {
			fas[0].SetBondType(LCBException)
			if a.LCBSummary {
				dropSummaryOxygen(fas[0])
			}
		} else {
			fas[0].SetBondType(LCBRegular)
		}
	}
	return hg, nil
}

// dropSummaryOxygen gives the 1-hydroxyl counted in a chain summary to the
// headgroup.
func dropSummaryOxygen(fa *FattyAcid) {
	list := fa.Groups["O"]
	if len(list) == 0 {
		return
	}
	g := list[0].Base()
	if g.Count--; g.Count <= 0 {
		if list = list[1:]; len(list) == 0 {
			delete(fa.Groups, "O")
		} else {
			fa.Groups["O"] = list
		}
	}
}

// Assemble builds the lipid with its adduct.
func (a *Assembly) Assemble() (*LipidAdduct, error) {
	if a.Level == 0 {
		a.Level = FullStructure
	}
	hg, err := a.PrepareHeadgroup()
	if err != nil {
		return nil, err
	}
	l, err := NewLipid(a.Level, hg, a.FattyAcids)
	if err != nil {
		return nil, err
	}
	if a.Level == Species && a.SpeciesEthers > 0 {
		l.Info().NumEthers = a.SpeciesEthers
	}
	return &LipidAdduct{Lipid: l, Adduct: a.Adduct}, nil
}
