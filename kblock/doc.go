// Package kblock provides the leaf stages kflow components are built from.
//
// # Overview
//
// A block owns an input queue, a pool of workers and, for blocks that produce
// output, an outlet that offers every produced item to the linked targets.
// Every block finishes exactly once with an Outcome that is observable through
// its Completion:
//
//   - Complete stops accepting input; queued items are processed and delivered
//     before the block succeeds.
//   - Fault discards queued items and finishes the block faulted.
//   - Canceling the context passed with WithContext finishes the block canceled.
//
// # Linking
//
//	parse := kblock.NewTransformBlock(func(ctx context.Context, line string) (int, error) {
//	    return strconv.Atoi(line)
//	})
//	sum := kblock.NewActionBlock(func(ctx context.Context, n int) error {
//	    total += n
//	    return nil
//	})
//	parse.LinkTo(sum, kblock.LinkOptions{PropagateCompletion: true})
//
// Each output item is offered to every link whose filter admits it. An item
// that no link admits stays at the head of the outlet and holds back the items
// behind it until a link that admits it is added.
package kblock
