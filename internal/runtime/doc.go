/*
Package runtime compiles workflow trees into engine jobs and runs them.

A render is four strictly sequential phases over one validated tree:

 1. Scan counts every leaf occurrence per canonical local path.
 2. PrepareCopies duplicates each path used N>1 times into N-1 physical copies.
 3. The evaluator walks the tree bottom-up: leaves take their next alias and are
    normalized, actions are dispatched through the Registry.
 4. The terminal streams are compiled into a filtergraph.Job and handed to the
    engine.

Everything a render allocates (the usage table, the copy table, the temporary
directory holding the copies) belongs to that call and is released before it
returns, whatever the outcome.
*/
package runtime
