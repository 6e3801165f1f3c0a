package receipt

import "context"

type ctxKey int

const writerCtxKey ctxKey = iota

// WithWriter attaches w so Session.Finish can record the command. A nil w
// leaves receipts disabled.
func WithWriter(ctx context.Context, w Writer) context.Context {
	if w == nil {
		return ctx
	}
	return context.WithValue(ctx, writerCtxKey, w)
}

// From returns the receipt writer on ctx, or nil.
func From(ctx context.Context) Writer {
	w, _ := ctx.Value(writerCtxKey).(Writer)
	return w
}

// Enabled reports whether commands run under ctx leave a receipt.
func Enabled(ctx context.Context) bool {
	return From(ctx) != nil
}
