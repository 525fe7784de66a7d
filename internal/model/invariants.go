package model

import "fmt"

// CheckInvariants verifies the collection-wide rules every committed
// mutation must preserve:
//   - ids are unique
//   - nicknames are unique case-insensitively
//   - a provider identity maps to at most one account
//   - directly registered accounts never share a registration address
//   - winRate agrees with the counters
func CheckInvariants(accounts []Account) error {
	ids := make(map[string]struct{}, len(accounts))
	nicknames := make(map[string]string, len(accounts))
	federations := make(map[string]string)
	addresses := make(map[string]string)

	for i := range accounts {
		a := &accounts[i]

		if _, ok := ids[a.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAccountID, a.ID)
		}
		ids[a.ID] = struct{}{}

		key := NicknameKey(a.Nickname)
		if other, ok := nicknames[key]; ok {
			return fmt.Errorf("%w: %q (accounts %s and %s)", ErrDuplicateNickname, a.Nickname, other, a.ID)
		}
		nicknames[key] = a.ID

		if a.IsFederated() {
			fk := a.Provider + "\x00" + a.ProviderUserID
			if other, ok := federations[fk]; ok {
				return fmt.Errorf("%w: %s/%s (accounts %s and %s)", ErrDuplicateFederation, a.Provider, a.ProviderUserID, other, a.ID)
			}
			federations[fk] = a.ID
		} else if a.RegistrationIP != "" {
			if other, ok := addresses[a.RegistrationIP]; ok {
				return fmt.Errorf("%w: accounts %s and %s", ErrDuplicateIP, other, a.ID)
			}
			addresses[a.RegistrationIP] = a.ID
		}

		if want := WinRate(a.Stats.Wins, a.Stats.GamesPlayed); a.Stats.WinRate != want {
			return fmt.Errorf("account %s: winRate %d, expected %d", a.ID, a.Stats.WinRate, want)
		}
	}
	return nil
}
