package diag

// Error code constants, organized by phase, following the teacher's
// per-phase numbered-code convention (there: PAR###/MOD###/LDR###; here:
// LEX-, PAR-, E2xx for elaboration, TY- for type, SYN- for synthesis,
// TIMING- for STA/SDC, SIM- for simulation).

const (
	// ============================================================
	// Lexical errors
	// ============================================================

	// LEX001 indicates an unterminated string literal.
	LEX001 = "LEX001"
	// LEX002 indicates an unterminated block comment.
	LEX002 = "LEX002"
	// LEX003 indicates an unterminated extended/escaped identifier.
	LEX003 = "LEX003"
	// LEX004 indicates an invalid character in the input.
	LEX004 = "LEX004"
	// LEX005 indicates an empty escaped identifier (\<whitespace> immediately).
	LEX005 = "LEX005"
	// LEX006 indicates a system identifier `$` not followed by a letter.
	LEX006 = "LEX006"
	// LEX007 is a warning for an unsupported compiler directive (`` ` ``).
	LEX007 = "LEX007"

	// ============================================================
	// Syntax errors
	// ============================================================

	// PAR001 indicates an unexpected token.
	PAR001 = "PAR001"
	// PAR002 indicates an unclosed block (missing endmodule/end/;).
	PAR002 = "PAR002"

	// ============================================================
	// Elaboration errors
	// ============================================================

	// E201 indicates an unknown module/entity referenced by an instantiation.
	E201 = "E201"
	// E202 indicates a recursive instantiation cycle.
	E202 = "E202"
	// E203 indicates a parameter expression could not be evaluated as constant.
	E203 = "E203"
	// E204 indicates an unknown identifier reference.
	E204 = "E204"
	// E205 indicates a duplicate module/entity name across files (warning).
	E205 = "E205"
	// E206 indicates the configured top module was not found.
	E206 = "E206"

	// ============================================================
	// Type errors
	// ============================================================

	// TY001 indicates a width mismatch on assignment.
	TY001 = "TY001"
	// TY002 indicates a signed/unsigned operand mix.
	TY002 = "TY002"

	// ============================================================
	// Synthesis errors
	// ============================================================

	// SYN001 indicates an unsupported construct in behavioral lowering.
	SYN001 = "SYN001"
	// SYN002 indicates a cell the technology mapper could not map.
	SYN002 = "SYN002"
	// SYN003 is a lint-level warning: incomplete assignment in a combinational
	// process that is not always_latch (possible inferred latch).
	SYN003 = "SYN003"
	// SYN004 is a lint-level warning: a signal has no structural driver
	// (never a ConcurrentAssign/process/cell-output target).
	SYN004 = "SYN004"
	// SYN005 is a lint-level warning: a signal has more than one structural
	// driver (conflicting ConcurrentAssign/process/cell-output targets).
	SYN005 = "SYN005"
	// SYN006 is a lint-level info: a signal is never read anywhere and
	// isn't a port, so it carries no observable effect.
	SYN006 = "SYN006"

	// ============================================================
	// Timing errors
	// ============================================================

	// TIMING-1 indicates an unrecognized SDC/XDC command (warning).
	TimingUnknownCommand = "TIMING-1"
	// TIMING-2 indicates a command with a missing required flag (warning).
	TimingMissingFlag = "TIMING-2"
	// TIMING-10 indicates the design does not meet timing (worst slack < 0).
	TimingViolation = "TIMING-10"

	// ============================================================
	// Simulation
	// ============================================================

	// SIM001 reports an assertion failure (non-fatal).
	SIM001 = "SIM001"
	// SIM002 is informational: a $finish fired.
	SIM002 = "SIM002"

	// ============================================================
	// Internal
	// ============================================================

	// INT001 indicates an invariant was violated (programmer error).
	INT001 = "INT001"
)
