package format

import (
	"strconv"
	"time"
)

const msPerMinute = 60 * 1000

// Delta formats a signed duration in milliseconds.
//
//	|ms| < 10      "+Nms  "
//	|ms| < 100     "+NNms "
//	|ms| < 1000    "+NNNms"
//	|ms| < 10000   "+N.NNs"
//	|ms| < 60000   "+NN.Ns"
//	otherwise      "+NmNs"
func Delta(ms int64) string {
	sign := "+"
	mag := uint64(ms)
	if ms < 0 {
		sign = "-"
		// -(ms+1)+1 keeps math.MinInt64 in range.
		mag = uint64(-(ms + 1)) + 1
	}

	switch {
	case mag < 10:
		return sign + strconv.FormatUint(mag, 10) + "ms  "
	case mag < 100:
		return sign + strconv.FormatUint(mag, 10) + "ms "
	case mag < 1000:
		return sign + strconv.FormatUint(mag, 10) + "ms"
	case mag < 10000:
		return sign + seconds(int64(mag), 2) + "s"
	case mag < msPerMinute:
		return sign + seconds(int64(mag), 1) + "s"
	}

	mins := mag / msPerMinute
	secs := (mag - mins*msPerMinute) / 1000
	return sign + strconv.FormatUint(mins, 10) + "m" + strconv.FormatUint(secs, 10) + "s"
}

// DeltaDuration formats d with millisecond precision.
func DeltaDuration(d time.Duration) string {
	return Delta(d.Milliseconds())
}

// seconds renders ms as seconds with the given precision, cut to four
// characters so rounding up (9.999 -> "10.00") cannot widen the column.
func seconds(ms int64, prec int) string {
	s := strconv.FormatFloat(float64(ms)/1000, 'f', prec, 64)
	if len(s) > 4 {
		s = s[:4]
	}
	return s
}
