package models

import "math/big"

// mulDiv computes amount*num/den with truncation toward zero, using a
// 128-bit-wide intermediate so the product cannot wrap. Returns ErrOverflow
// when the quotient does not fit in an int64.
func mulDiv(amount int64, num, den uint64) (int64, error) {
	p := new(big.Int).Mul(big.NewInt(amount), new(big.Int).SetUint64(num))
	p.Quo(p, new(big.Int).SetUint64(den))
	if !p.IsInt64() {
		return 0, ErrOverflow
	}
	return p.Int64(), nil
}

// CalculateUnlocked returns how much of amount has unlocked at time now.
// Nothing unlocks before the cliff; everything is unlocked at or after end.
// In between the unlock is linear in elapsed time measured from start. The
// cliff gates when unlocking begins, not the rate.
func CalculateUnlocked(amount int64, start, cliff, end, now uint64) (int64, error) {
	if now < cliff {
		return 0, nil
	}
	if now >= end {
		return amount, nil
	}
	return mulDiv(amount, now-start, end-start)
}

// CalculateFee returns the protocol fee for amount at feeBps basis points,
// rounded down.
func CalculateFee(amount int64, feeBps uint32) (int64, error) {
	return mulDiv(amount, uint64(feeBps), 10000)
}
