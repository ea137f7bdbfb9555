package generator_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/implgen/classfile"
	"github.com/dhamidi/implgen/classfile/classfiletest"
	"github.com/dhamidi/implgen/classpath"
)

const (
	pub       = classfile.AccPublic
	prot      = classfile.AccProtected
	abstract  = classfile.AccAbstract
	pubAbs    = classfile.AccPublic | classfile.AccAbstract
	protAbs   = classfile.AccProtected | classfile.AccAbstract
	bridge    = classfile.AccPublic | classfile.AccBridge | classfile.AccSynthetic
	pubStatic = classfile.AccPublic | classfile.AccStatic
)

func classFile(b *classfiletest.Builder) *fstest.MapFile {
	return &fstest.MapFile{Data: b.Bytes()}
}

// runtimeFS is a miniature standard library with the shapes the resolver has
// to get right: generic bridges, default methods, redeclared abstract
// methods and abstract skeleton classes.
func runtimeFS() fstest.MapFS {
	return fstest.MapFS{
		"java/lang/Object.class": classFile(classfiletest.Class("java/lang/Object").Extends("").
			Constructor(pub, "()V").
			Method(pub, "equals", "(Ljava/lang/Object;)Z").
			Method(pub|classfile.AccNative, "hashCode", "()I").
			Method(pub, "toString", "()Ljava/lang/String;").
			Method(prot|classfile.AccNative, "clone", "()Ljava/lang/Object;", classfiletest.Throws("java/lang/CloneNotSupportedException")).
			Method(prot, "finalize", "()V", classfiletest.Throws("java/lang/Throwable")).
			Method(pub|classfile.AccFinal|classfile.AccNative, "getClass", "()Ljava/lang/Class;").
			Method(classfile.AccPrivate|classfile.AccStatic|classfile.AccNative, "registerNatives", "()V")),

		"java/lang/Comparable.class": classFile(classfiletest.Interface("java/lang/Comparable").
			Method(pubAbs, "compareTo", "(Ljava/lang/Object;)I", classfiletest.Signature("(TT;)I"))),

		"java/lang/Iterable.class": classFile(classfiletest.Interface("java/lang/Iterable").
			Method(pubAbs, "iterator", "()Ljava/util/Iterator;").
			Method(pub, "forEach", "(Ljava/util/function/Consumer;)V").
			Method(pub, "spliterator", "()Ljava/util/Spliterator;")),

		"java/lang/Runnable.class": classFile(classfiletest.Interface("java/lang/Runnable").
			Method(pubAbs, "run", "()V")),

		"java/util/Collection.class": classFile(classfiletest.Interface("java/util/Collection").
			Implements("java/lang/Iterable").
			Method(pubAbs, "size", "()I").
			Method(pubAbs, "isEmpty", "()Z").
			Method(pubAbs, "contains", "(Ljava/lang/Object;)Z").
			Method(pubAbs, "iterator", "()Ljava/util/Iterator;").
			Method(pubAbs, "toArray", "()[Ljava/lang/Object;").
			Method(pubAbs, "add", "(Ljava/lang/Object;)Z").
			Method(pubAbs, "remove", "(Ljava/lang/Object;)Z").
			Method(pubAbs, "addAll", "(Ljava/util/Collection;)Z").
			Method(pubAbs, "removeAll", "(Ljava/util/Collection;)Z").
			Method(pubAbs, "clear", "()V").
			Method(pubAbs, "equals", "(Ljava/lang/Object;)Z").
			Method(pubAbs, "hashCode", "()I").
			Method(pub, "stream", "()Ljava/util/stream/Stream;")),

		"java/util/Set.class": classFile(classfiletest.Interface("java/util/Set").
			Implements("java/util/Collection").
			Method(pubAbs, "size", "()I").
			Method(pubAbs, "iterator", "()Ljava/util/Iterator;").
			Method(pubAbs, "equals", "(Ljava/lang/Object;)Z").
			Method(pubAbs, "hashCode", "()I").
			Method(pub, "spliterator", "()Ljava/util/Spliterator;").
			Method(pubStatic, "of", "()Ljava/util/Set;")),

		"java/util/Queue.class": classFile(classfiletest.Interface("java/util/Queue").
			Implements("java/util/Collection").
			Method(pubAbs, "add", "(Ljava/lang/Object;)Z").
			Method(pubAbs, "offer", "(Ljava/lang/Object;)Z").
			Method(pubAbs, "remove", "()Ljava/lang/Object;").
			Method(pubAbs, "poll", "()Ljava/lang/Object;").
			Method(pubAbs, "element", "()Ljava/lang/Object;").
			Method(pubAbs, "peek", "()Ljava/lang/Object;")),

		"java/util/AbstractCollection.class": classFile(classfiletest.Class("java/util/AbstractCollection").Abstract().
			Implements("java/util/Collection").
			Constructor(prot, "()V").
			Method(pubAbs, "iterator", "()Ljava/util/Iterator;").
			Method(pubAbs, "size", "()I").
			Method(pub, "isEmpty", "()Z").
			Method(pub, "contains", "(Ljava/lang/Object;)Z").
			Method(pub, "toArray", "()[Ljava/lang/Object;").
			Method(pub, "add", "(Ljava/lang/Object;)Z").
			Method(pub, "remove", "(Ljava/lang/Object;)Z").
			Method(pub, "addAll", "(Ljava/util/Collection;)Z").
			Method(pub, "removeAll", "(Ljava/util/Collection;)Z").
			Method(pub, "clear", "()V").
			Method(pub, "toString", "()Ljava/lang/String;")),

		"java/util/AbstractSet.class": classFile(classfiletest.Class("java/util/AbstractSet").Abstract().
			Extends("java/util/AbstractCollection").
			Implements("java/util/Set").
			Constructor(prot, "()V").
			Method(pub, "equals", "(Ljava/lang/Object;)Z").
			Method(pub, "hashCode", "()I").
			Method(pub, "removeAll", "(Ljava/util/Collection;)Z")),

		"java/util/AbstractQueue.class": classFile(classfiletest.Class("java/util/AbstractQueue").Abstract().
			Extends("java/util/AbstractCollection").
			Implements("java/util/Queue").
			Constructor(prot, "()V").
			Method(pub, "add", "(Ljava/lang/Object;)Z").
			Method(pub, "remove", "()Ljava/lang/Object;").
			Method(pub, "element", "()Ljava/lang/Object;").
			Method(pub, "clear", "()V").
			Method(pub, "addAll", "(Ljava/util/Collection;)Z")),

		"java/util/Map.class": classFile(classfiletest.Interface("java/util/Map").
			Method(pubAbs, "size", "()I").
			Nested("java/util/Map$Entry", "java/util/Map", "Entry", pubStatic|classfile.AccInterface|abstract)),

		"java/util/Map$Entry.class": classFile(classfiletest.Interface("java/util/Map$Entry").
			Method(pubAbs, "getKey", "()Ljava/lang/Object;").
			Method(pubAbs, "getValue", "()Ljava/lang/Object;").
			Method(pubAbs, "setValue", "(Ljava/lang/Object;)Ljava/lang/Object;").
			Method(pubStatic, "comparingByKey", "()Ljava/util/Comparator;").
			Nested("java/util/Map$Entry", "java/util/Map", "Entry", pubStatic|classfile.AccInterface|abstract)),

		"java/lang/String.class": classFile(classfiletest.Class("java/lang/String").Final().
			Implements("java/lang/Comparable").
			Constructor(pub, "()V")),

		"java/util/ArrayList.class": classFile(classfiletest.Class("java/util/ArrayList").
			Constructor(pub, "()V")),

		"java/lang/Thread$State.class": classFile(classfiletest.Class("java/lang/Thread$State").
			Flags(pub | classfile.AccFinal | classfile.AccEnum | classfile.AccSuper).
			Extends("java/lang/Enum")),
	}
}

func newRuntime() *classpath.Loader {
	return classpath.New(nil, classpath.NewSource("runtime", runtimeFS()))
}

// userClasses is what a user compiled into a class directory.
func userClasses() map[string]*classfiletest.Builder {
	return map[string]*classfiletest.Builder{
		"study/MyInterface": classfiletest.Interface("study/MyInterface").
			Method(pubAbs, "count", "()I").
			Method(pubAbs, "run", "()V", classfiletest.Throws("java/io/IOException")).
			Method(pubAbs, "names", "([JZ)[Ljava/lang/String;").
			Method(pubStatic, "helper", "()V").
			Method(classfile.AccPrivate, "secret", "()V").
			Method(pub, "describe", "()Ljava/lang/String;"),

		"NoPackageInterface": classfiletest.Interface("NoPackageInterface").
			Method(pubAbs, "ping", "()V"),

		"study/Base": classfiletest.Class("study/Base").Abstract().
			Constructor(classfile.AccPrivate, "(I)V").
			Constructor(pub, "()V").
			Constructor(prot, "(ILjava/lang/String;)V", classfiletest.Throws("java/io/IOException")).
			Constructor(pub, "(J)V").
			Method(protAbs, "work", "(C[[D)Z").
			Method(pub, "done", "()V"),

		"study/Money": classfiletest.Class("study/Money").Abstract().
			Implements("java/lang/Comparable").
			Constructor(pub, "()V").
			Method(pubAbs, "compareTo", "(Lstudy/Money;)I").
			Method(bridge, "compareTo", "(Ljava/lang/Object;)I"),
		"study/Source": classfiletest.Interface("study/Source").
			Method(pubAbs, "get", "()Ljava/lang/Object;"),
		"study/Named": classfiletest.Class("study/Named").Abstract().
			Implements("study/Source").
			Constructor(pub, "()V").
			Method(pubAbs, "get", "()Ljava/lang/String;").
			Method(bridge, "get", "()Ljava/lang/Object;"),

		"study/Task": classfiletest.Class("study/Task").Abstract().
			Constructor(pub, "()V").
			Method(pubAbs, "perform", "()V"),
		"study/Job": classfiletest.Class("study/Job").Abstract().
			Extends("study/Task").
			Constructor(pub, "()V").
			Method(pub, "perform", "()V"),
		"study/Redo": classfiletest.Class("study/Redo").Abstract().
			Extends("study/Job").
			Constructor(pub, "()V").
			Method(pubAbs, "perform", "()V"),

		"study/Top": classfiletest.Interface("study/Top").
			Method(pubAbs, "value", "()Ljava/lang/Object;"),
		"study/Left": classfiletest.Interface("study/Left").
			Implements("study/Top").
			Method(pubAbs, "value", "()Ljava/lang/String;", classfiletest.Throws("java/io/IOException")),
		"study/Right": classfiletest.Interface("study/Right").
			Implements("study/Top"),
		"study/Bottom": classfiletest.Interface("study/Bottom").
			Implements("study/Left", "study/Right"),

		"study/Runner": classfiletest.Class("study/Runner").Abstract().
			Implements("java/lang/Runnable").
			Constructor(pub, "()V").
			Method(pub, "run", "()V"),

		"study/Done":     classfiletest.Class("study/Done").Final().Constructor(pub, "()V"),
		"study/Concrete": classfiletest.Class("study/Concrete").Constructor(pub, "()V"),
		"study/Color": classfiletest.Class("study/Color").
			Flags(pub | classfile.AccFinal | classfile.AccEnum | classfile.AccSuper | abstract).
			Extends("java/lang/Enum"),
		"study/Point": classfiletest.Class("study/Point").Final().Extends("java/lang/Record").Record(),
		"study/Shape": classfiletest.Class("study/Shape").Abstract().Permits("study/Circle").
			Constructor(pub, "()V"),
		"study/Singleton": classfiletest.Class("study/Singleton").Abstract().
			Constructor(classfile.AccPrivate, "()V"),
		"study/Outer$Inner": classfiletest.Class("study/Outer$Inner").Abstract().
			Constructor(pub, "(Lstudy/Outer;)V").
			Nested("study/Outer$Inner", "study/Outer", "Inner", pub|abstract),
		"study/Orphan": classfiletest.Class("study/Orphan").Abstract().
			Extends("study/Missing").
			Constructor(pub, "()V"),
	}
}

// writeClasses compiles userClasses into a fresh directory.
func writeClasses(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, b := range userClasses() {
		path := filepath.Join(dir, filepath.FromSlash(name)+".class")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	}
	return dir
}
