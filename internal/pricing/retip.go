package pricing

// retipFees maps a core bit diameter (inches) to the flat retip service fee
// in minor units. The schedule is hand-curated by the retip shop; entries are
// exact-match only and must never be interpolated or derived by formula.
var retipFees = map[float64]Money{
	2:    9600,
	2.25: 9600,
	2.5:  9900,
	2.75: 9900,
	3:    10200,
	3.25: 10200,
	3.5:  10500,
	3.75: 10500,
	4:    10800,
	4.25: 10800,
	4.5:  10800,
	5:    12000,
	5.5:  12600,
	6:    13200,
	6.5:  14100,
	7:    15000,
	8:    16800,
	9:    18600,
	10:   20400,
	11:   22800,
	12:   25200,
	14:   30000,
	16:   34800,
	18:   40200,
	20:   45600,
	22:   51000,
	24:   56400,
	26:   61800,
	28:   67200,
	30:   72600,
	32:   78000,
	34:   83400,
	36:   88800,
	38:   94200,
	40:   99600,
	42:   105000,
	44:   110400,
	46:   115800,
	48:   121200,
	50:   126600,
	52:   132000,
	54:   137400,
	56:   142800,
	58:   148200,
	60:   153600,
}

// RetipFee returns the flat retip fee for an exact diameter match. Diameters
// outside the schedule resolve to 0; an unknown size simply cannot be retipped
// through the platform and must never surface as an error.
func RetipFee(diameter float64) Money {
	fee, ok := retipFees[diameter]
	if !ok {
		return 0
	}
	return fee
}

// RetipDiameters returns the schedule's diameters in no particular order.
// Useful for seeding and for monotonicity checks.
func RetipDiameters() []float64 {
	out := make([]float64, 0, len(retipFees))
	for d := range retipFees {
		out = append(out, d)
	}
	return out
}
