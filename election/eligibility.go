// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"strings"
	"time"

	"github.com/danielhkuo/samaj-vote/models"
)

// AgeCutoff is the date on which voter ages are measured
var AgeCutoff = time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC)

const (
	YuvaPankhMinAge = 18
	YuvaPankhMaxAge = 39
	TrusteeMinAge   = 18
)

// DOBLayout is the stored date-of-birth format (DD/MM/YYYY)
const DOBLayout = "02/01/2006"

// yuvaPankhRegions are matched case-insensitively as substrings of the
// voter's region
var yuvaPankhRegions = []string{"karnataka & goa", "raigad"}

// ParseDOB parses a DD/MM/YYYY date of birth
func ParseDOB(s string) (time.Time, error) {
	return time.Parse(DOBLayout, strings.TrimSpace(s))
}

// AgeOn returns completed years between dob and on
func AgeOn(dob, on time.Time) int {
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

// voterAge returns the voter's age at AgeCutoff, or false if the DOB is
// missing or unparseable
func voterAge(v models.Voter) (int, bool) {
	if v.DOB == nil {
		return 0, false
	}
	dob, err := ParseDOB(*v.DOB)
	if err != nil {
		return 0, false
	}
	return AgeOn(dob, AgeCutoff), true
}

func inYuvaPankhRegion(region string) bool {
	r := strings.ToLower(region)
	for _, allowed := range yuvaPankhRegions {
		if strings.Contains(r, allowed) {
			return true
		}
	}
	return false
}

// ResolveEligibility decides whether the voter may vote in an election.
// zone is the voter's assigned zone as loaded from the registry, or nil
// when there is no assignment or the referenced zone does not exist.
func ResolveEligibility(v models.Voter, e models.ElectionType, zone *models.Zone) models.Eligibility {
	result := models.Eligibility{
		ElectionType: e,
		HasVoted:     v.HasVoted(e),
	}

	if !v.IsActive {
		result.Reason = models.ReasonInactive
		return result
	}

	assigned := v.ZoneFor(e)
	if assigned == nil {
		if e == models.ElectionYuvaPankh {
			result.Reason = yuvaPankhReason(v)
			result.Anomaly = result.Reason == models.ReasonUnknown
		} else {
			result.Reason = models.ReasonNotAssigned
		}
		return result
	}

	// Assignment points at a zone that is missing or belongs elsewhere
	if zone == nil || zone.ID != *assigned || zone.ElectionType != e {
		result.Reason = models.ReasonUnknown
		result.Anomaly = true
		return result
	}

	if e == models.ElectionTrustee {
		age, ok := voterAge(v)
		if !ok {
			result.Reason = models.ReasonMissingDOB
			return result
		}
		if age < TrusteeMinAge {
			result.Reason = models.ReasonAge
			return result
		}
	}

	result.Eligible = true
	result.Zone = zone
	result.SeatCount = zone.SeatCount
	return result
}

// yuvaPankhReason explains why a voter has no Yuva Pankh zone
func yuvaPankhReason(v models.Voter) string {
	age, ok := voterAge(v)
	if !ok {
		return models.ReasonMissingDOB
	}
	if age < YuvaPankhMinAge || age > YuvaPankhMaxAge {
		return models.ReasonAge
	}
	if !inYuvaPankhRegion(v.Region) {
		return models.ReasonRegion
	}
	// Age and region qualify but no zone was assigned
	return models.ReasonUnknown
}
