package mir

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtAssign stores a value into a place.
	StmtAssign StmtKind = iota
	// StmtPlaceMention evaluates a place and discards it.
	StmtPlaceMention
	// StmtSetDiscriminant writes the tag of an enum place.
	StmtSetDiscriminant
	// StmtValidate asserts the validity invariant of a place.
	StmtValidate
	// StmtDeinit de-initializes a place.
	StmtDeinit
	// StmtStorageLive allocates storage for a local.
	StmtStorageLive
	// StmtStorageDead releases the storage of a local.
	StmtStorageDead
)

// Statement is a non-terminating instruction of a basic block.
type Statement struct {
	Kind StmtKind

	Assign          AssignStmt
	Place           PlaceExpr // PlaceMention, Validate, Deinit
	SetDiscriminant SetDiscriminantStmt
	FnEntry         bool      // Validate
	Local           LocalName // StorageLive, StorageDead
}

// AssignStmt copies Src into Dst.
type AssignStmt struct {
	Dst PlaceExpr
	Src ValueExpr
}

// SetDiscriminantStmt sets the discriminant of the enum at Dst to Value.
type SetDiscriminantStmt struct {
	Dst   PlaceExpr
	Value int64
}
