package meta

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// minYear rejects digit runs that happen to look like dates
const minYear = 1900

// Camera and phone naming: IMG_20190704_102030, 2017-11-26_030858, 2017-11-26030858,
// Screenshot 2021-03-04 at 10.11.12, VID-20200101-WA0001.
var filenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|[^0-9])(\d{4})[-_.]?(\d{2})[-_.]?(\d{2})[-_. T]*(?:at[ _])?(\d{2})[-_.:]?(\d{2})[-_.:]?(\d{2})(?:[^0-9]|$)`),
	regexp.MustCompile(`(?:^|[^0-9])(\d{4})[-_.](\d{2})[-_.](\d{2})(?:[^0-9]|$)`),
	regexp.MustCompile(`(?:^|[^0-9])(\d{4})(\d{2})(\d{2})(?:[^0-9]|$)`),
}

// FilenameTime parses a capture date out of the file name (without extension).
// Times without a zone are local.
func FilenameTime(path string) (time.Time, bool) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	for _, re := range filenamePatterns {
		// A rejected match resumes the search right after its last digit,
		// so the boundary character stays available to the next candidate.
		for offset := 0; offset < len(name); {
			loc := re.FindStringSubmatchIndex(name[offset:])
			if loc == nil {
				break
			}
			fields := make([]string, 0, len(loc)/2-1)
			for i := 2; i < len(loc); i += 2 {
				fields = append(fields, name[offset+loc[i]:offset+loc[i+1]])
			}
			if t, ok := buildTime(fields); ok {
				return t, true
			}
			offset += loc[len(loc)-1]
		}
	}

	return time.Time{}, false
}

// buildTime validates the captured fields; time.Date would silently
// normalize 2019-02-31 into March.
func buildTime(fields []string) (time.Time, bool) {
	nums := make([]int, 6)
	for i, f := range fields {
		if i >= len(nums) {
			break
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	hour, minute, sec := nums[3], nums[4], nums[5]

	if year < minYear || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	if hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.Local)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
