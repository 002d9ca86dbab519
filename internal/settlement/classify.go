package settlement

// Kind is the consumption pattern of an item, determined by comparing its
// consumer set to the full member set at computation time.
type Kind string

const (
	KindShared     Kind = "SHARED"
	KindIndividual Kind = "INDIVIDUAL"
	KindPartial    Kind = "PARTIAL"
)

// Classify categorizes an item by its consumers. Shared requires set
// equality with the current members, not just matching cardinality: a member
// added after the item was recorded turns a previously shared item partial,
// which is accepted because classification always runs at computation time.
// Empty consumer sets are a precondition violation rejected by Compute.
func Classify(consumerIDs []int64, memberIDs map[int64]struct{}) Kind {
	consumers := make(map[int64]struct{}, len(consumerIDs))
	for _, id := range consumerIDs {
		consumers[id] = struct{}{}
	}

	if len(consumers) == len(memberIDs) {
		shared := true
		for id := range memberIDs {
			if _, ok := consumers[id]; !ok {
				shared = false
				break
			}
		}
		if shared {
			return KindShared
		}
	}

	if len(consumers) == 1 {
		return KindIndividual
	}
	return KindPartial
}
